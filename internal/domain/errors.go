package domain

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrBranchNotFound  = errors.New("branch not found")
	ErrModNotFound     = errors.New("mod not found")
	ErrInvalidModsPath = errors.New("not a mods directory")
	ErrSyncInProgress  = errors.New("a sync is already in progress")
	ErrPlanNotReady    = errors.New("plan has not been confirmed")
)
