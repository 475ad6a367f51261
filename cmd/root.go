package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nodewee/ocr-skill/pkg/config"
	"github.com/nodewee/ocr-skill/pkg/core"
	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/output"
	"github.com/nodewee/ocr-skill/pkg/types"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

var (
	prompt      string
	fastMode    bool
	jsonOutput  bool
	outputPath  string
	language    string
	verbose     bool
	showVersion bool
)

// AppHandler encapsulates application main processing logic
type AppHandler struct {
	config       *config.Config
	logger       *logger.Logger
	processor    interfaces.Processor
	stdout       io.Writer
	loadConfig   func() (*config.Config, error)
	newProcessor func(cfg *config.Config, log *logger.Logger) interfaces.Processor
}

// NewAppHandler creates an application handler writing results to stdout
func NewAppHandler(stdout io.Writer) *AppHandler {
	return &AppHandler{
		stdout:     stdout,
		loadConfig: config.LoadConfigWithEnvOverrides,
		newProcessor: func(cfg *config.Config, log *logger.Logger) interfaces.Processor {
			return core.NewRequestProcessor(cfg, log)
		},
	}
}

// ProcessFile is the main entry point for file processing
func (h *AppHandler) ProcessFile(ctx context.Context, inputFile string) error {
	if err := h.initialize(); err != nil {
		return err
	}

	req := h.buildRequest(inputFile)
	result, err := h.processor.Process(ctx, req)
	if err != nil {
		return err
	}

	if err := output.Emit(result, req.Format, req.OutputPath, h.stdout); err != nil {
		return err
	}

	if req.OutputPath != "" {
		h.logger.ProgressAlways("💾", "Output saved to: %s", req.OutputPath)
	}
	return nil
}

// initialize loads configuration and creates the logger and processor
func (h *AppHandler) initialize() error {
	cfg, err := h.loadConfig()
	if err != nil {
		return err
	}
	h.config = cfg
	h.applyCommandLineOverrides()

	if err := h.config.Validate(); err != nil {
		return err
	}

	h.logger = logger.NewLogger(h.config.LogLevel, h.config.EnableVerbose)
	h.logger.Debug("Loaded %s", h.config)
	h.processor = h.newProcessor(h.config, h.logger)
	return nil
}

// applyCommandLineOverrides applies command line parameter overrides
func (h *AppHandler) applyCommandLineOverrides() {
	if language != "" {
		h.config.Language = language
	}
	if verbose {
		h.config.EnableVerbose = true
	}
}

func (h *AppHandler) buildRequest(inputFile string) *types.OcrRequest {
	format := types.OutputFormatText
	if jsonOutput {
		format = types.OutputFormatJSON
	}
	return &types.OcrRequest{
		SourcePath: inputFile,
		Prompt:     prompt,
		Backend:    types.BackendFor(fastMode),
		Format:     format,
		OutputPath: outputPath,
		Language:   h.config.Language,
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ocr <path>",
	Short: "Extract text from images and PDFs with a local vision model or Tesseract",
	Long: `Extract text from images and PDFs.

By default the image is sent to a vision-language model served by a local
Ollama instance (model deepseek-ocr), which follows a custom --prompt.
With --fast the in-process Tesseract engine is used instead; it is quicker
but extracts plain text only and ignores --prompt.

PDF pages are rendered with pdftoppm (poppler) and recognized one by one.
Images larger than 1536px on either side are downscaled first.

Supported formats: PNG, JPG/JPEG, BMP, GIF, WEBP, TIFF, PDF

Environment:
  OLLAMA_BASE_URL                 Ollama endpoint (default http://localhost:11434)
  OLLAMA_OCR_MODEL                model name (default deepseek-ocr)
  OCR_DISABLE_MODEL_SOURCE_CHECK  skip the online language data check in fast mode

Examples:
  ocr image.png                                 # vision model
  ocr image.png --fast                          # Tesseract
  ocr image.png --prompt "Extract the table as markdown"
  ocr document.pdf                              # every page of a PDF
  ocr image.png --json                          # JSON output
  ocr doc.pdf -o result.txt                     # save to file
  ocr scan.png -f -l eng+chi_sim                # Tesseract with languages`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "ocr %s\n", version)
			return nil
		}

		if len(args) == 0 {
			_ = cmd.Usage()
			return utils.NewInputError("missing input file", nil)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return NewAppHandler(cmd.OutOrStdout()).ProcessFile(ctx, args[0])
	},
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		return utils.ExitCode(err)
	}
	return utils.ExitOK
}

// reportError prints the error and its remediation hint
func reportError(w io.Writer, err error) {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		fmt.Fprintf(w, "Error (%s): %s\n", appErr.Type, appErr.Message)
		if appErr.Cause != nil {
			fmt.Fprintf(w, "  cause: %v\n", appErr.Cause)
		}
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	if hint := utils.GetHint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&prompt, "prompt", "p", "",
		"Custom instruction for the vision model (ignored with --fast)")
	rootCmd.Flags().BoolVarP(&fastMode, "fast", "f", false,
		"Use Tesseract for faster plain text extraction")
	rootCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false,
		"Output as JSON")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Output file path (default: stdout)")
	rootCmd.Flags().StringVarP(&language, "lang", "l", "",
		"Tesseract languages for --fast, e.g. eng+chi_sim (default: eng)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Show progress information on stderr")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false,
		"Show version information")
}
