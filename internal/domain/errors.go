package domain

import "errors"

var (
	ErrZoneNotFound         = errors.New("zone not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidCoordinates   = errors.New("invalid latitude or longitude")
	ErrInvalidZone          = errors.New("invalid zone")
)
