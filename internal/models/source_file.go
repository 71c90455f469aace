package models

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultJudgePattern matches judge output files.
const DefaultJudgePattern = `.*\.out`

// SourceFile is metadata for a file uploaded with a submission.
type SourceFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;uniqueIndex:idx_source_files_submission_name" json:"submission_id"`
	Name         string    `gorm:"size:255;not null;uniqueIndex:idx_source_files_submission_name" json:"name"`
	ByteCount    int64     `gorm:"not null;default:0" json:"byte_count"`
	LineCount    int       `gorm:"not null;default:0" json:"line_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// CompileJudgePattern anchors pattern so it must match a whole file name.
func CompileJudgePattern(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultJudgePattern
	}
	return regexp.Compile("^(?:" + pattern + ")$")
}

// SortSourceFiles orders files case-insensitively by name, with judge output
// files after everything else. The input slice is not modified.
func SortSourceFiles(files []SourceFile, judge *regexp.Regexp) []SourceFile {
	sorted := make([]SourceFile, len(files))
	copy(sorted, files)

	isJudge := func(name string) bool {
		return judge != nil && judge.MatchString(name)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Name, sorted[j].Name
		aOut, bOut := isJudge(a), isJudge(b)
		if aOut != bOut {
			return bOut
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})

	return sorted
}
