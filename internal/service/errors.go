package service

import "errors"

// ErrParamInvalid is returned by service-layer validation that runs before
// anything reaches the apperr-classified store/scraper boundary.
var ErrParamInvalid = errors.New("invalid parameter")
