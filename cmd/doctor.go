package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/constants"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/ocr/engines"
	"github.com/nodewee/ocr-skill/pkg/raster"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

const doctorOllamaTimeout = 5 * time.Second

type checkStatus string

const (
	statusOK   checkStatus = "OK"
	statusWarn checkStatus = "WARN"
	statusFail checkStatus = "FAIL"
)

// doctorReport collects check lines and remembers whether any failed
type doctorReport struct {
	w      io.Writer
	failed bool
}

func (r *doctorReport) add(status checkStatus, name, detail string) {
	if status == statusFail {
		r.failed = true
	}
	fmt.Fprintf(r.w, "[%s] %s: %s\n", status, name, detail)
}

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the OCR backends and tools are ready",
	Long: `Check the local environment:
  - Ollama is reachable and the OCR model is pulled
  - pdftoppm is available for PDF input
  - Tesseract is linked for --fast
  - the Tesseract language data source is reachable

Exits non-zero when a required check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides()
		if err != nil {
			return err
		}
		if code := runDoctor(cmd.Context(), cfg, cmd.OutOrStdout()); code != utils.ExitOK {
			return utils.NewBackendUnavailableError("environment check failed", nil)
		}
		return nil
	},
}

// runDoctor prints one line per check and returns a non-zero code on failure
func runDoctor(ctx context.Context, cfg *config.Config, w io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}
	platform := constants.GetPlatformConfig()
	report := &doctorReport{w: w}

	checkOllama(ctx, cfg, report, platform)
	checkPdftoppm(cfg, report, platform)
	checkTesseract(cfg, report, platform)
	checkModelSource(ctx, cfg, report)

	if report.failed {
		fmt.Fprintln(w, "\n❌ Some checks failed")
		return utils.ExitBackendUnavailable
	}
	fmt.Fprintln(w, "\n✅ Ready")
	return utils.ExitOK
}

func checkOllama(ctx context.Context, cfg *config.Config, report *doctorReport, platform *constants.PlatformConfig) {
	ctx, cancel := context.WithTimeout(ctx, doctorOllamaTimeout)
	defer cancel()

	engine := engines.NewOllamaEngine(cfg, logger.Discard())
	models, err := engine.ListModels(ctx)
	if err != nil {
		report.add(statusFail, "ollama", fmt.Sprintf("%s unreachable (%s)", cfg.OllamaBaseURL, platform.OllamaStartHint))
		return
	}
	report.add(statusOK, "ollama", fmt.Sprintf("%s reachable, %d model(s)", cfg.OllamaBaseURL, len(models)))

	if engine.HasModel(models) {
		report.add(statusOK, "model", engine.Model())
	} else {
		report.add(statusWarn, "model", fmt.Sprintf("%s not pulled (run: ollama pull %s)", engine.Model(), engine.Model()))
	}
}

// checkPdftoppm resolves the renderer exactly as PDF conversion does
func checkPdftoppm(cfg *config.Config, report *doctorReport, platform *constants.PlatformConfig) {
	path, err := raster.ResolveBinary(cfg.PdftoppmPath, exec.LookPath)
	if err != nil {
		report.add(statusWarn, "pdftoppm", fmt.Sprintf("%s not found, PDF input unavailable (%s)", cfg.PdftoppmPath, platform.PopplerHint))
		return
	}
	report.add(statusOK, "pdftoppm", path)
}

func checkTesseract(cfg *config.Config, report *doctorReport, platform *constants.PlatformConfig) {
	if !engines.TesseractLinked {
		report.add(statusWarn, "tesseract", "not linked in this build, --fast unavailable")
		return
	}
	languages := strings.Join(engines.ParseLanguages(cfg.Language), "+")
	if _, ok := utils.FindExecutable(platform.TesseractPaths...); !ok {
		report.add(statusWarn, "tesseract", fmt.Sprintf("library %s linked, CLI not on PATH; make sure language data for %s is installed (%s)",
			engines.TesseractVersion(), languages, platform.TesseractHint))
		return
	}
	report.add(statusOK, "tesseract", fmt.Sprintf("library %s, languages %s", engines.TesseractVersion(), languages))
}

func checkModelSource(ctx context.Context, cfg *config.Config, report *doctorReport) {
	if cfg.DisableModelSourceCheck || cfg.ModelSourceURL == "" {
		report.add(statusOK, "model source", "check disabled, local language data only")
		return
	}

	client := &http.Client{Timeout: constants.ModelSourceTimeout}
	if err := engines.CheckModelSource(ctx, client, cfg.ModelSourceURL); err != nil {
		report.add(statusWarn, "model source", fmt.Sprintf("%s unreachable: %v", cfg.ModelSourceURL, err))
		return
	}
	report.add(statusOK, "model source", cfg.ModelSourceURL)
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
