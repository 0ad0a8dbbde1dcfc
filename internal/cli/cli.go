// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ctxsnap/internal/config"
	"github.com/temirov/ctxsnap/internal/services/clipboard"
	"github.com/temirov/ctxsnap/internal/snapshot"
	"github.com/temirov/ctxsnap/internal/tokenizer"
	"github.com/temirov/ctxsnap/internal/types"
	"github.com/temirov/ctxsnap/internal/utils"
)

const (
	outputFlagName       = "output"
	outputFlagShorthand  = "o"
	excludeDirFlagName   = "exclude-dir"
	excludeFileFlagName  = "exclude-file"
	includeExtFlagName   = "include-ext"
	maxSizeFlagName      = "max-size-kb"
	gitignoreFlagName    = "gitignore"
	tokensFlagName       = "tokens"
	modelFlagName        = "model"
	copyFlagName         = "copy"
	configFlagName       = "config"
	globalFlagName       = "global"
	forceFlagName        = "force"
	verboseFlagName      = "verbose"
	versionFlagName      = "version"
	versionTemplate      = "ctxsnap version: %s\n"
	rootUse              = "ctxsnap"
	rootShortDescription = "ctxsnap project snapshot generator"
	rootLongDescription  = `ctxsnap captures a project as a single text file.
The snapshot starts with an ASCII tree of the project followed by the contents of every included file.
Binary files and files over the size limit are replaced by placeholders.`

	generateUse              = types.CommandGenerate + " [root]"
	generateAlias            = "g"
	generateShortDescription = "write a project snapshot (" + generateAlias + ")"
	generateLongDescription  = `Walk the root directory (the working directory by default), render its file tree
and concatenate the contents of included files into the output file.
Flags override values from .ctxsnap.yaml, which override built-in defaults.`
	generateUsageExample = `  # Snapshot the current project into source_code_context.txt
  ctxsnap generate

  # Only Go files under 64 KB, honoring .gitignore, copied to the clipboard
  ctxsnap g --include-ext .go --max-size-kb 64 --gitignore --copy ./service`

	initUse              = types.CommandInit
	initShortDescription = "write the default configuration file"
	initLongDescription  = `Write the default configuration template to ./.ctxsnap.yaml,
or to ~/.ctxsnap/.ctxsnap.yaml with --global.`

	outputFlagDescription      = "snapshot file, relative to the root unless absolute"
	excludeDirFlagDescription  = "exclude paths starting with this directory prefix (repeatable)"
	excludeFileFlagDescription = "exclude paths matching this glob pattern (repeatable)"
	includeExtFlagDescription  = "only include files with this suffix (repeatable)"
	maxSizeFlagDescription     = "omit contents of files larger than this many kilobytes (0 = unlimited)"
	gitignoreFlagDescription   = "apply the root .gitignore"
	tokensFlagDescription      = "report the token count of the snapshot"
	modelFlagDescription       = "tokenizer model to use for token counting"
	copyFlagDescription        = "copy the snapshot to the clipboard"
	configFlagDescription      = "explicit configuration file"
	globalFlagDescription      = "write the global configuration instead of the local one"
	forceFlagDescription       = "overwrite an existing configuration file"
	verboseFlagDescription     = "log skipped entries"
	versionFlagDescription     = "display application version"

	initWrittenMessageFormat    = "Configuration written to %s\n"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorAbsolutePathFormat     = "abs failed for '%s': %w"
	warningTokenCountMessage    = "failed to count tokens"
	warningClipboardMessage     = "failed to copy snapshot to clipboard"
)

// CounterFactory builds a token counter for the requested model and reports the resolved model name.
type CounterFactory func(tokenizer.Config) (tokenizer.Counter, string, error)

// Dependencies are the collaborators of the CLI. Zero fields are replaced with production implementations.
type Dependencies struct {
	Logger           *zap.Logger
	Copier           clipboard.Copier
	NewCounter       CounterFactory
	WorkingDirectory string
	Output           io.Writer
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}
	if dependencies.NewCounter == nil {
		dependencies.NewCounter = tokenizer.NewCounter
	}
	if dependencies.Output == nil {
		dependencies.Output = os.Stdout
	}
	return dependencies
}

// Execute runs the ctxsnap application until completion or until SIGINT/SIGTERM.
func Execute(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCommand := NewRootCommand(Dependencies{Logger: logger})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// NewRootCommand builds the root Cobra command with its subcommands.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	application := &application{dependencies: dependencies.withDefaults()}
	var showVersion bool
	var verbose bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return err
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if !verbose {
				return nil
			}
			verboseLogger, loggerError := utils.NewVerboseApplicationLogger()
			if loggerError != nil {
				return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
			}
			application.dependencies.Logger = verboseLogger
			return nil
		},
	}
	rootCommand.SetOut(application.dependencies.Output)
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.AddCommand(
		application.createGenerateCommand(),
		application.createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

type application struct {
	dependencies Dependencies
}

// generateFlags stores the raw values of generate command flags.
type generateFlags struct {
	outputFile        string
	excludeDirs       []string
	excludeFiles      []string
	includeExtensions []string
	maxFileSizeKB     float64
	useGitignore      bool
	tokensEnabled     bool
	tokenModel        string
	copyEnabled       bool
	configPath        string
}

// createGenerateCommand returns the generate subcommand.
func (application *application) createGenerateCommand() *cobra.Command {
	var flags generateFlags

	generateCommand := &cobra.Command{
		Use:     generateUse,
		Aliases: []string{generateAlias},
		Short:   generateShortDescription,
		Long:    generateLongDescription,
		Example: generateUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			settings, settingsError := application.resolveSettings(command, flags)
			if settingsError != nil {
				return settingsError
			}
			rootArgument := ""
			if len(arguments) > 0 {
				rootArgument = arguments[0]
			}
			return application.runGenerate(command.Context(), rootArgument, settings)
		},
	}

	generateCommand.Flags().StringVarP(&flags.outputFile, outputFlagName, outputFlagShorthand, config.DefaultOutputFileName, outputFlagDescription)
	generateCommand.Flags().StringArrayVar(&flags.excludeDirs, excludeDirFlagName, nil, excludeDirFlagDescription)
	generateCommand.Flags().StringArrayVar(&flags.excludeFiles, excludeFileFlagName, nil, excludeFileFlagDescription)
	generateCommand.Flags().StringArrayVar(&flags.includeExtensions, includeExtFlagName, nil, includeExtFlagDescription)
	generateCommand.Flags().Float64Var(&flags.maxFileSizeKB, maxSizeFlagName, 0, maxSizeFlagDescription)
	registerBooleanFlag(generateCommand.Flags(), &flags.useGitignore, gitignoreFlagName, false, gitignoreFlagDescription)
	registerBooleanFlag(generateCommand.Flags(), &flags.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	generateCommand.Flags().StringVar(&flags.tokenModel, modelFlagName, config.DefaultTokenModel, modelFlagDescription)
	registerBooleanFlag(generateCommand.Flags(), &flags.copyEnabled, copyFlagName, false, copyFlagDescription)
	generateCommand.Flags().StringVar(&flags.configPath, configFlagName, "", configFlagDescription)
	return generateCommand
}

// createInitCommand returns the init subcommand.
func (application *application) createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: application.dependencies.WorkingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, err := fmt.Fprintf(command.OutOrStdout(), initWrittenMessageFormat, writtenPath)
			return err
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

func (application *application) workingDirectory() (string, error) {
	if application.dependencies.WorkingDirectory != "" {
		return application.dependencies.WorkingDirectory, nil
	}
	workingDirectory, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf(workingDirectoryErrorFormat, err)
	}
	return workingDirectory, nil
}

// resolveSettings loads configuration files and applies the flags that were set explicitly.
func (application *application) resolveSettings(command *cobra.Command, flags generateFlags) (config.GenerateSettings, error) {
	workingDirectory, workingDirectoryError := application.workingDirectory()
	if workingDirectoryError != nil {
		return config.GenerateSettings{}, workingDirectoryError
	}
	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: flags.configPath,
	})
	if loadError != nil {
		return config.GenerateSettings{}, loadError
	}
	settings := applicationConfiguration.Generate.Settings()

	changed := command.Flags().Changed
	if changed(outputFlagName) {
		settings.OutputFile = flags.outputFile
	}
	settings.ExcludeDirs = utils.DeduplicatePatterns(append(settings.ExcludeDirs, flags.excludeDirs...))
	settings.ExcludeFiles = utils.DeduplicatePatterns(append(settings.ExcludeFiles, flags.excludeFiles...))
	settings.IncludeExtensions = utils.DeduplicatePatterns(append(settings.IncludeExtensions, flags.includeExtensions...))
	if changed(maxSizeFlagName) {
		settings.MaxFileSizeKB = flags.maxFileSizeKB
	}
	if changed(gitignoreFlagName) {
		settings.UseGitignore = flags.useGitignore
	}
	if changed(tokensFlagName) {
		settings.TokensEnabled = flags.tokensEnabled
	}
	if changed(modelFlagName) {
		settings.TokenModel = flags.tokenModel
	}
	if changed(copyFlagName) {
		settings.Copy = flags.copyEnabled
	}
	return settings, nil
}

// runGenerate writes the snapshot for rootArgument and reports a summary.
func (application *application) runGenerate(ctx context.Context, rootArgument string, settings config.GenerateSettings) error {
	logger := application.dependencies.Logger
	options, optionsError := application.buildOptions(rootArgument, settings)
	if optionsError != nil {
		return optionsError
	}

	generator, generatorError := snapshot.NewGenerator(options, logger)
	if generatorError != nil {
		return generatorError
	}
	result, runError := generator.Run(ctx)
	if runError != nil {
		return runError
	}

	summary := types.GenerationSummary{
		OutputPath:     options.OutputPath,
		TextFiles:      result.TextFiles,
		BinaryFiles:    result.BinaryFiles,
		OversizedFiles: result.OversizedFiles,
		TotalSize:      utils.FormatFileSize(result.Bytes),
	}

	if settings.TokensEnabled {
		tokenCount, model, countError := application.countTokens(settings.TokenModel, result.Text)
		if countError != nil {
			logger.Warn(warningTokenCountMessage, zap.String("model", settings.TokenModel), zap.Error(countError))
		} else {
			summary.TotalTokens = tokenCount
			summary.Model = model
		}
	}

	if settings.Copy {
		if copyError := application.dependencies.Copier.Copy(result.Text); copyError != nil {
			logger.Warn(warningClipboardMessage, zap.Error(copyError))
		}
	}

	logger.Info(summary.String(), zap.String("output", summary.OutputPath))
	return nil
}

// buildOptions turns resolved settings into generator options rooted at rootArgument.
func (application *application) buildOptions(rootArgument string, settings config.GenerateSettings) (snapshot.Options, error) {
	workingDirectory, workingDirectoryError := application.workingDirectory()
	if workingDirectoryError != nil {
		return snapshot.Options{}, workingDirectoryError
	}
	rootDirectory := workingDirectory
	if rootArgument != "" {
		rootDirectory = rootArgument
		if !filepath.IsAbs(rootDirectory) {
			rootDirectory = filepath.Join(workingDirectory, rootDirectory)
		}
	}
	absoluteRoot, absoluteError := filepath.Abs(rootDirectory)
	if absoluteError != nil {
		return snapshot.Options{}, fmt.Errorf(errorAbsolutePathFormat, rootDirectory, absoluteError)
	}

	outputPath := settings.OutputFile
	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(absoluteRoot, outputPath)
	}

	exclusions := snapshot.Exclusions{
		Directories: settings.ExcludeDirs,
		Files:       settings.ExcludeFiles,
	}
	if utils.IsWithinRoot(outputPath, absoluteRoot) {
		outputPattern := utils.EscapeGlobPattern(utils.RelativePathOrSelf(outputPath, absoluteRoot))
		exclusions.Files = utils.DeduplicatePatterns(append(exclusions.Files, outputPattern))
	}
	if settings.UseGitignore {
		matcher, matcherError := config.LoadGitignoreMatcher(absoluteRoot)
		if matcherError != nil {
			return snapshot.Options{}, matcherError
		}
		if matcher != nil {
			exclusions.Matchers = append(exclusions.Matchers, matcher)
		}
	}

	return snapshot.Options{
		RootDirectory:     absoluteRoot,
		OutputPath:        outputPath,
		Exclusions:        exclusions,
		IncludeExtensions: settings.IncludeExtensions,
		MaxFileSizeBytes:  utils.KilobytesToBytes(settings.MaxFileSizeKB),
	}, nil
}

func (application *application) countTokens(model string, text string) (int, string, error) {
	counter, resolvedModel, counterError := application.dependencies.NewCounter(tokenizer.Config{Model: model})
	if counterError != nil {
		return 0, "", counterError
	}
	tokenCount, countError := tokenizer.CountText(counter, text)
	if countError != nil {
		return 0, "", countError
	}
	return tokenCount, resolvedModel, nil
}
