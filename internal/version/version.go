package version

import "fmt"

// Заполняются при сборке через -ldflags:
//
//	-X .../internal/version.version=v1.2.3
//	-X .../internal/version.commit=abc1234
//	-X .../internal/version.buildDate=2026-08-30T10:00:00Z
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Build описывает версию собранного бинаря.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// Current возвращает информацию о сборке.
func Current() Build {
	return Build{Version: version, Commit: commit, Date: buildDate}
}

// String возвращает однострочное представление для логов и health-ответов.
func (b Build) String() string {
	return fmt.Sprintf("%s (%s, %s)", b.Version, b.Commit, b.Date)
}
