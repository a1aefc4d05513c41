/*
Copyright 2025 The llm-d Authors.

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

// Package logging holds the verbosity levels used with klog throughout the
// service. The --log-level flag sets klog verbosity: error to DEFAULT, info
// to DEBUG, verbose to TRACE. Messages logged at DEFAULT are emitted at every
// level, including error.
package logging

const (
	// DEFAULT is the verbosity of routine operational messages.
	DEFAULT = 0
	// DEBUG is the verbosity of per-request diagnostics.
	DEBUG = 2
	// TRACE is the verbosity of per-block and per-version diagnostics.
	TRACE = 4
)
