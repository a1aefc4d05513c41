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

package utils_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/llm-d/llm-d-kv-store-service/pkg/utils"
)

func TestSliceMap(t *testing.T) {
	assert.Nil(t, utils.SliceMap(nil, func(int) int { return 0 }))
	assert.Equal(t, []string{"1", "2", "3"},
		utils.SliceMap([]int{1, 2, 3}, strconv.Itoa))
}

func TestSliceFind(t *testing.T) {
	values := []int{4, 8, 15}

	found := utils.SliceFind(values, func(v *int) bool { return *v > 5 })
	if assert.NotNil(t, found) {
		assert.Equal(t, 8, *found)
	}

	assert.Nil(t, utils.SliceFind(values, func(v *int) bool { return *v > 100 }))
}
