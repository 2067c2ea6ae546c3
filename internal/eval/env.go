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

// Environment is a lexically scoped binding table. `let` defines a name in
// the current scope; `with` opens a child scope for its block body, so
// names set there shadow the parent only for that block.
type Environment struct {
	parent *Environment
	vars   map[string]Value
}

// NewEnvironment creates a root environment with no parent.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]Value)}
}

// Child creates a new scope nested under e.
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, vars: make(map[string]Value)}
}

// Define binds name to v in this scope, shadowing any outer binding.
func (e *Environment) Define(name string, v Value) {
	e.vars[name] = v
}

// Lookup searches this scope and its ancestors for name.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupInt reads an integer-valued binding (e.g. "detail", "layer"),
// returning ok=false if unset or not a NumberValue.
func (e *Environment) LookupInt(name string) (int, bool) {
	v, ok := e.Lookup(name)
	if !ok {
		return 0, false
	}
	n, ok := v.(NumberValue)
	if !ok {
		return 0, false
	}
	return int(n.Value), true
}
