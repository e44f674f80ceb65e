package service

import "errors"

var (
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrIntegrationDisabled = errors.New("integration is disabled")
	ErrInvalidAPIKey       = errors.New("invalid or missing api key")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidPayload      = errors.New("invalid alert payload")
)
