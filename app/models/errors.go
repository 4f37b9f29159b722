package models

import "errors"

var ErrPasswordTooShort = errors.New("password must have at least 8 characters")
