// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/bookreview/pkg/pointer"
)

func TestPointer(t *testing.T) {
	genre := pointer.To("Science Fiction")
	assert.Equal(t, "Science Fiction", *genre)

	assert.Equal(t, "Science Fiction", pointer.Val(genre))
	assert.Equal(t, "", pointer.Val[string](nil))
	assert.Equal(t, 0.0, pointer.Val[float64](nil))
}
