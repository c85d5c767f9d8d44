package service

import "errors"

var (
	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidEmail is returned when a registration has no usable email.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrDriverExists is returned when the email is already registered.
	ErrDriverExists = errors.New("driver already registered")

	// ErrFareRequired is returned when a trip is saved without a fare.
	ErrFareRequired = errors.New("fare is required")

	// ErrInvalidDate is returned when a date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrShiftBusy is returned when another request holds the driver's shift lock.
	ErrShiftBusy = errors.New("shift is being updated, retry")

	// ErrEmptyQuestion is returned when a chat message has no text.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrEmptyImage is returned when an extraction request has no image.
	ErrEmptyImage = errors.New("image is empty")

	// ErrUnreadableImage is returned when nothing could be read from an image.
	ErrUnreadableImage = errors.New("could not read image")
)
