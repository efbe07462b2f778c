package service

import "errors"

var (
	// ErrNoModel is returned when the viewer is requested for a project
	// without a model reference.
	ErrNoModel = errors.New("project has no 3d model")
	// ErrInvalidModelFile is returned for sandbox uploads that are not .glb.
	ErrInvalidModelFile = errors.New("only .glb files are accepted")
	// ErrFileTooLarge is returned for sandbox uploads over the size limit.
	ErrFileTooLarge = errors.New("model file too large")
	// ErrNoProject is returned for lightbox actions before a project is open.
	ErrNoProject = errors.New("no project open")
	// ErrImageOutOfRange is returned by Show for an invalid index.
	ErrImageOutOfRange = errors.New("image index out of range")
	// ErrNoViewer is returned for viewer actions while no viewer is open.
	ErrNoViewer = errors.New("no viewer open")
	// ErrNoWalkthrough is returned for walkthrough input before one is open.
	ErrNoWalkthrough = errors.New("no walkthrough open")
)
