// Copyright 2025 walteh LLC
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

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 10 // Width for status text
)

// 🎯 FormatFileOperation formats a file outcome for display
func FormatFileOperation(info FileInfo) string {
	var prefix string
	switch info.Status {
	case StatusModified:
		prefix = color.YellowString("⟳")
	case StatusFailed:
		prefix = color.RedString("✗")
	case StatusSkipped:
		prefix = color.CyanString("•")
	default:
		prefix = color.HiBlackString("-")
	}

	detail := fmt.Sprintf("%d replacements", info.Replacements)
	if info.Replacements == 1 {
		detail = "1 replacement"
	}
	if info.Error != nil {
		detail = info.Error.Error()
	}

	return fmt.Sprintf("%s%s %-*s %-*s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		nameWidth, info.Path,
		statusWidth, info.Status,
		detail,
	)
}
