package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortSourceFilesPutsJudgeOutputLast(t *testing.T) {
	judge, err := CompileJudgePattern("")
	require.NoError(t, err)

	files := []SourceFile{
		{Name: "test.out"},
		{Name: "main.c"},
		{Name: "Makefile"},
		{Name: "README.md"},
		{Name: "a.out"},
		{Name: "helpers.h"},
		{Name: "out.c"},
	}

	sorted := SortSourceFiles(files, judge)

	names := make([]string, 0, len(sorted))
	for _, f := range sorted {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"helpers.h", "main.c", "Makefile", "out.c", "README.md", "a.out", "test.out"}, names)
	require.Equal(t, "test.out", files[0].Name, "input must not be reordered")
}

func TestCompileJudgePatternMatchesWholeName(t *testing.T) {
	judge, err := CompileJudgePattern(`.*\.log`)
	require.NoError(t, err)
	require.True(t, judge.MatchString("run.log"))
	require.False(t, judge.MatchString("run.log.txt"))

	_, err = CompileJudgePattern("(")
	require.Error(t, err)
}
