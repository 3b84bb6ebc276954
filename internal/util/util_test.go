// Copyright 2026 Google LLC
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

package util

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type UtilTest struct {
	suite.Suite
}

func TestUtilSuite(t *testing.T) {
	suite.Run(t, new(UtilTest))
}

func (ts *UtilTest) TestResolveFilePathStartingWithTilda() {
	homeDir, err := os.UserHomeDir()
	require.NoError(ts.T(), err)

	resolvedPath, err := GetResolvedPath("~/test.txt")

	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), filepath.Join(homeDir, "test.txt"), resolvedPath)
}

func (ts *UtilTest) TestResolveFilePathStartingWithDot() {
	currentWorkingDir, err := os.Getwd()
	require.NoError(ts.T(), err)

	resolvedPath, err := GetResolvedPath("./test.txt")

	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), filepath.Join(currentWorkingDir, "test.txt"), resolvedPath)
}

func (ts *UtilTest) TestResolveFilePathStartingWithDoubleDot() {
	currentWorkingDir, err := os.Getwd()
	require.NoError(ts.T(), err)

	resolvedPath, err := GetResolvedPath("../test.txt")

	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), filepath.Join(filepath.Dir(currentWorkingDir), "test.txt"), resolvedPath)
}

func (ts *UtilTest) TestResolveAbsoluteFilePath() {
	resolvedPath, err := GetResolvedPath("/var/dir/test.txt")

	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), "/var/dir/test.txt", resolvedPath)
}

func (ts *UtilTest) TestResolveEmptyFilePath() {
	resolvedPath, err := GetResolvedPath("")

	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), "", resolvedPath)
}

func (ts *UtilTest) TestYAMLStringify() {
	input := struct {
		Name  string `yaml:"app-name"`
		Count int    `yaml:"count"`
		dummy int
	}{Name: "CUSA00001", Count: 3}

	str, err := YAMLStringify(input)

	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), "app-name: CUSA00001\ncount: 3\n", str)
}

func (ts *UtilTest) TestYAMLStringifyUsesTextMarshaler() {
	input := map[string]textValue{"mode": 7}

	str, err := YAMLStringify(input)

	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), "mode: \"7\"\n", str)
}

type textValue int

func (v textValue) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprint(int(v))), nil
}
