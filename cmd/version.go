package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nodewee/ocr-skill/pkg/ocr/engines"
)

// Version information variables - set by main.go
var (
	version   = "dev"
	gitCommit = "none"
	buildTime = "unknown"
	buildBy   = "unknown"
)

// SetVersionInfo sets the version information from main.go
func SetVersionInfo(v, commit, buildTimeParam, buildByParam string) {
	version = v
	gitCommit = commit
	buildTime = buildTimeParam
	buildBy = buildByParam
}

// GetVersionInfo returns the current version information
func GetVersionInfo() (string, string, string, string) {
	return version, gitCommit, buildTime, buildBy
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		showVersionInfo(cmd.OutOrStdout())
	},
}

// showVersionInfo displays build, runtime and OCR library information
func showVersionInfo(w io.Writer) {
	fmt.Fprintf(w, "🔎 OCR Skill\n")
	fmt.Fprintf(w, "============\n\n")

	fmt.Fprintf(w, "🔖 Version Information:\n")
	fmt.Fprintf(w, "  Version:     %s\n", version)
	fmt.Fprintf(w, "  Git Commit:  %s\n", gitCommit)
	fmt.Fprintf(w, "  Build Time:  %s\n", buildTime)
	fmt.Fprintf(w, "  Built By:    %s\n", buildBy)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "⚙️ Runtime Information:\n")
	fmt.Fprintf(w, "  Go Version:  %s\n", runtime.Version())
	fmt.Fprintf(w, "  OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if engines.TesseractLinked {
		fmt.Fprintf(w, "  Tesseract:   %s\n", engines.TesseractVersion())
	} else {
		fmt.Fprintf(w, "  Tesseract:   not linked (fast mode unavailable)\n")
	}
	fmt.Fprintf(w, "\n")

	if version != "dev" && !strings.Contains(version, "dev") && !strings.Contains(version, "+") {
		fmt.Fprintf(w, "🚀 This is a release build\n")
	} else {
		fmt.Fprintf(w, "🔧 This is a development build\n")
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
