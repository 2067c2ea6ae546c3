package dsl

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

import "fmt"

// ParseError reports a syntax error with enough context to point an author
// at the offending token: path, line, column, the expected token set and
// the token actually found.
type ParseError struct {
	Pos      Pos
	Expected []string
	Found    string
}

func (e *ParseError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s: unexpected %s", e.Pos, e.Found)
	}
	return fmt.Sprintf("%s: expected %s, found %s", e.Pos, joinOr(e.Expected), e.Found)
}

func joinOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	out := items[0]
	for _, it := range items[1:len(items)-1] {
		out += ", " + it
	}
	out += " or " + items[len(items)-1]
	return out
}
