package router

import "errors"

var errMissingStreamID = errors.New("stream_update without stream id")
