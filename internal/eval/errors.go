package eval

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

import "github.com/railwayhistory/railmap/internal/dsl"

// EvalError reports a failure executing the AST: an unknown procedure, an
// arity mismatch, a type mismatch, or a geometry resolution failure
// surfaced from internal/pathstore.
type EvalError struct {
	Pos     dsl.Pos
	Message string
}

func (e *EvalError) Error() string {
	return e.Pos.String() + ": " + e.Message
}

func errAt(pos dsl.Pos, msg string) error {
	return &EvalError{Pos: pos, Message: msg}
}
