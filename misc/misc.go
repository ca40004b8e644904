//
// Copyright 2018 The Rsviz Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package misc is misc stuff.
package misc

import (
	"regexp"
)

var (
	sanitizeRegexSpace       = regexp.MustCompile("\\s+")
	sanitizeRegexSlash       = regexp.MustCompile("/")
	sanitizeRegexNonAlphaNum = regexp.MustCompile("[^a-zA-Z_\\-0-9\\.]")
)

// SanitizeName makes an arbitrary string (a category name, a split
// key such as a hostname) safe to use as a file name.
func SanitizeName(name string) string {
	name = sanitizeRegexSpace.ReplaceAllString(name, "_")
	name = sanitizeRegexSlash.ReplaceAllString(name, "-")
	return sanitizeRegexNonAlphaNum.ReplaceAllString(name, "")
}
