package service

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// appError pairs an HTTP status with the error that caused it, so every
// handler can return one value instead of writing the response body
// itself and remembering to set the status code every time.
type appError struct {
	Err     error
	Code    int
	Message string
}

func (e *appError) Error() string {
	return e.Message
}

func appErrorBadRequest(err error, msg string) *appError {
	return &appError{Err: err, Code: http.StatusBadRequest, Message: msg}
}

func appErrorNotFound(err error, msg string) *appError {
	return &appError{Err: err, Code: http.StatusNotFound, Message: msg}
}

func appErrorInternal(err error, msg string) *appError {
	return &appError{Err: err, Code: http.StatusInternalServerError, Message: msg}
}

func appErrorUnauthorized(err error, msg string) *appError {
	return &appError{Err: err, Code: http.StatusUnauthorized, Message: msg}
}

func appErrorForbidden(err error, msg string) *appError {
	return &appError{Err: err, Code: http.StatusForbidden, Message: msg}
}

// appHandler is an http.Handler that reports failure by returning an
// *appError instead of writing the response itself; ServeHTTP translates
// that into a status code and logged message.
type appHandler func(w http.ResponseWriter, r *http.Request) *appError

func (fn appHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	appErr := fn(w, r)
	if appErr == nil {
		return
	}
	if appErr.Err != nil {
		log.WithError(appErr.Err).WithField("path", r.URL.Path).
			WithField("status", appErr.Code).Warn("service: request failed")
	}
	http.Error(w, appErr.Message, appErr.Code)
}

// writeJSON encodes v as JSON with the given content type. A marshal
// failure here is always a programmer error, never caller input, so it
// is reported as appErrorInternal rather than threaded through every
// caller's signature.
func writeJSON(w http.ResponseWriter, contentType string, v interface{}) *appError {
	w.Header().Set("Content-Type", contentType)
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return appErrorInternal(err, "failed to encode response")
	}
	return nil
}
