package task

import (
	"errors"
	"regexp"
	"strings"
)

// Признаём ссылки на репозитории основных хостингов: https://host/owner/repo
var repoURLRegex = regexp.MustCompile(`^https://(github\.com|gitlab\.com|bitbucket\.org)/[A-Za-z0-9_.\-]+/[A-Za-z0-9_.\-]+/?$`)

var (
	ErrInvalidRepoURL     = errors.New("github link must be a repository URL like https://github.com/owner/repo")
	ErrTitleRequired      = errors.New("title is required")
	ErrDescription        = errors.New("description is required")
	ErrDepartmentRequired = errors.New("department is required")
	ErrDeadlineRequired   = errors.New("deadline is required")
	ErrScoreOutOfRange    = errors.New("score must be between 0 and 100")
	ErrFeedbackRequired   = errors.New("feedback is required")
)

func ValidateRepoURL(link string) error {
	link = strings.TrimSpace(link)
	if link == "" || len(link) > 500 {
		return ErrInvalidRepoURL
	}
	if !repoURLRegex.MatchString(link) {
		return ErrInvalidRepoURL
	}
	return nil
}

func ValidateScore(score float64) error {
	if score < 0 || score > 100 {
		return ErrScoreOutOfRange
	}
	return nil
}

// IsValidationError сообщает, относится ли ошибка к валидации входных данных
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRepoURL) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrDescription) ||
		errors.Is(err, ErrDepartmentRequired) ||
		errors.Is(err, ErrDeadlineRequired) ||
		errors.Is(err, ErrScoreOutOfRange) ||
		errors.Is(err, ErrFeedbackRequired) ||
		errors.Is(err, ErrNotProjectMember) ||
		errors.Is(err, ErrProjectNotFound)
}
