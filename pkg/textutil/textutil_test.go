// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/certly/pkg/textutil"
)

func TestSmartTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "a@x.com", "a@x.com"},
		{"outer spaces", "   a@x.com  ", "a@x.com"},
		{"inner runs", "Gift   for   Mom", "Gift for Mom"},
		{"control chars dropped", "ABC\t123\nDEF", "ABC123DEF"},
		{"decomposed accent composed", "Cafe\u0301", "Caf\u00e9"},
		{"empty", "  \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textutil.SmartTrim(tt.input))
		})
	}
}
