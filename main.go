// Command locsync synchronizes localization files with a remote translation project.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/minios-linux/locsync/api"
	"github.com/minios-linux/locsync/config"
	"github.com/minios-linux/locsync/conflict"
	"github.com/minios-linux/locsync/i18n"
	"github.com/minios-linux/locsync/langmeta"
	"github.com/minios-linux/locsync/plan"
	"github.com/minios-linux/locsync/resolve"
	"github.com/minios-linux/locsync/settings"
	"github.com/minios-linux/locsync/syncstate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Colors. fatih/color turns them off when stderr is not a terminal.
var (
	infoColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed)
	debugColor   = color.New(color.FgMagenta)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, infoColor.Sprint("[INFO]")+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, successColor.Sprint("[OK]")+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, warnColor.Sprint("[WARN]")+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, errorColor.Sprint("[ERROR]")+" "+format+"\n", args...)
}

func logDebug(format string, args ...any) {
	if !debugMode {
		return
	}
	fmt.Fprintf(os.Stderr, debugColor.Sprint("[DEBUG]")+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	configPath              string
	debugMode               bool
	disableCertVerification bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "locsync",
		Short: "Synchronize localization files with a remote translation project",
		Long: `locsync: synchronize localization files with a remote translation project.

Source files are uploaded with push, translations are downloaded with pull.
Which files take part is declared in .locsync.json; paths may contain the
<language> placeholder, which is replaced by every language of the project.

Commands:
  init        Create .locsync.json for a file format
  config      Show the configuration in use
  pull        Download target files
  push        Upload source files
  pullSource  Download the source files
  pushTarget  Upload the target files
  languages   List the project's languages
  auth        Manage stored access tokens

The access token is read from the config file, then from
LOCSYNC_ACCESS_TOKEN (also loaded from .env), then from "locsync auth login".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional.
			_ = godotenv.Load()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: search .locsync.json)")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "Show debug output")
	root.PersistentFlags().BoolVar(&disableCertVerification, "disable-cert-verification", false, "Do not verify TLS certificates (discouraged)")

	root.AddCommand(
		newInitCmd(),
		newConfigCmd(),
		newPullCmd(),
		newPushCmd(),
		newPullSourceCmd(),
		newPushTargetCmd(),
		newLanguagesCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logError("%v", err)
		stop()
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("locsync version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Session: configuration, client and resolver shared by the sync commands
// ---------------------------------------------------------------------------

type session struct {
	cfg      *config.File
	client   *api.Client
	resolver *resolve.Resolver
	// stateDir holds locsync.lock, next to the config file.
	stateDir string
}

// findConfig returns the config path from --config or the lookup chain.
func findConfig() string {
	if configPath != "" {
		return configPath
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	path, _ := config.FindFile(wd)
	return path
}

// tokenFallback supplies the access token when the config file has none.
func tokenFallback() string {
	if token := os.Getenv(config.EnvAccessToken); token != "" {
		return token
	}
	return settings.Token("")
}

// loadConfig loads the configuration and rejects conflicting blocks.
func loadConfig() (*config.File, error) {
	path := findConfig()
	logDebug("config file: %s", path)

	cfg, err := config.Load(path, tokenFallback)
	if err != nil {
		return nil, err
	}
	if err := conflict.Validate(config.SectionPush, cfg.Sources()); err != nil {
		return nil, err
	}
	if err := conflict.Validate(config.SectionPull, cfg.Targets()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newClient(token string) (*api.Client, error) {
	if disableCertVerification {
		logWarning("%s", i18n.T("Unverified HTTPS requests are being made. Disabling certificate verification is strongly discouraged."))
	}
	opts := api.Options{
		Token:      token,
		CLIVersion: version,
		Insecure:   disableCertVerification,
	}
	if debugMode {
		opts.OnLog = func(msg string) { logDebug("%s", msg) }
	}
	return api.New(opts)
}

func newSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := newClient(cfg.App.AccessToken)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:      cfg,
		client:   client,
		resolver: resolve.New("", cfg.App.LanguageMap),
		stateDir: filepath.Dir(cfg.Path()),
	}, nil
}

// ---------------------------------------------------------------------------
// Operation output
// ---------------------------------------------------------------------------

const ruleWidth = 60

func printOperation(kind, path, language string) {
	fmt.Printf("\n%-9s:  %s\n%-9s:  %s\n", kind, path, i18n.T("Language"), language)
	fmt.Println(strings.Repeat("=", ruleWidth))
}

func printResult(ok bool) {
	if ok {
		fmt.Printf("%s: %s\n", i18n.T("Result"), successColor.Sprint(`"`+i18n.T("Success")+`"`))
		return
	}
	fmt.Printf("%s: %s\n", i18n.T("Result"), errorColor.Sprint(`"`+i18n.T("Error")+`"`))
}

func printUploadResult(res api.UploadResult) {
	printResult(true)
	fmt.Println()
	fmt.Printf(" - %-17s %d\n", i18n.T("Entries in file:"), res.Total)
	fmt.Printf(" - %-17s %d\n", i18n.T("Added:"), res.Added)
	fmt.Printf(" - %-17s %d\n", i18n.T("Updated:"), res.Updated)
	fmt.Printf(" - %-17s %d\n", i18n.T("Tag updates:"), res.TagUpdates)
}

func printNotes(notes []plan.Note) {
	for _, n := range notes {
		logWarning(i18n.T("Language %q skipped for #%d (%s): %s"), n.Language, n.Index, n.Path, i18n.T(n.Reason.String()))
	}
}

// ---------------------------------------------------------------------------
// Shared flag helpers
// ---------------------------------------------------------------------------

func addTagFlag(fs *pflag.FlagSet, tags *[]string) {
	fs.StringArrayVar(tags, "tag", nil, "Only handle blocks with this tag (repeatable)")
}

func addLanguagesFlag(fs *pflag.FlagSet, langs *string) {
	fs.StringVar(langs, "languages", "", "Comma-separated list of languages to download")
}

func addUploadFlags(fs *pflag.FlagSet, force, draft *bool) {
	fs.BoolVar(force, "force", false, "Overwrite existing remote values")
	fs.BoolVar(draft, "draft", false, "Upload values as draft")
}

// splitLanguages parses the --languages value.
func splitLanguages(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// pull / pullSource
// ---------------------------------------------------------------------------

func newPullCmd() *cobra.Command {
	var (
		tags      []string
		languages string
	)

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download target files",
		Long: `Download the files declared in app.pull.target.

Targets with the <language> placeholder are downloaded for every language of
the project except their exclude_languages. The first failed download stops
the command.

Examples:
  locsync pull
  locsync pull --languages de,fr
  locsync pull --tag app --tag web`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			if s.cfg.App.Pull == nil {
				return fmt.Errorf("%w: %s", config.ErrInvalid, i18n.T("no pull.target configured"))
			}
			filter := plan.Filter{Languages: splitLanguages(languages), Tags: tags}
			return runPull(cmd.Context(), s, config.SectionPull, s.cfg.Targets(), filter, false)
		},
	}

	addTagFlag(cmd.Flags(), &tags)
	addLanguagesFlag(cmd.Flags(), &languages)
	return cmd
}

func newPullSourceCmd() *cobra.Command {
	var (
		tags      []string
		languages string
	)

	cmd := &cobra.Command{
		Use:   "pullSource",
		Short: "Download the source files",
		Long: `Download the files declared in app.push.source, pinned to the current
project version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			if s.cfg.App.Push == nil {
				return fmt.Errorf("%w: %s", config.ErrInvalid, i18n.T("no push.source configured"))
			}
			filter := plan.Filter{Languages: splitLanguages(languages), Tags: tags}
			return runPull(cmd.Context(), s, config.SectionPush, s.cfg.Sources(), filter, true)
		},
	}

	addTagFlag(cmd.Flags(), &tags)
	addLanguagesFlag(cmd.Flags(), &languages)
	return cmd
}

// runPull downloads every planned operation, stopping at the first
// failure. pinVersion pins the downloads to the current project version.
func runPull(ctx context.Context, s *session, section string, blocks []config.FileBlock, filter plan.Filter, pinVersion bool) error {
	catalog := plan.Catalog{}
	if pinVersion {
		v, err := s.client.ProjectVersion(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", i18n.T("reading project version"), err)
		}
		catalog.Version = v
		logDebug("project version: %s", v)
	}
	if plan.NeedsCatalog(blocks, filter) {
		langs, err := s.client.Languages(ctx, catalog.Version)
		if err != nil {
			return fmt.Errorf("%s: %w", i18n.T("reading project languages"), err)
		}
		catalog.Languages = langs
		logDebug("project languages: %s", strings.Join(langs, ", "))
	}

	p := plan.Pull(s.resolver, blocks, catalog, filter)
	printNotes(p.Notes)
	for _, e := range p.Errors {
		printOperation(i18n.T("Download"), e.Path, i18n.T("missing"))
		printResult(false)
		logError("%v", e)
	}
	if len(p.Operations) == 0 {
		logWarning("%s", i18n.T("Nothing to download."))
	}

	state, err := syncstate.Load(s.stateDir)
	if err != nil {
		return err
	}
	// Drop entries of files deleted since the last pull.
	written := state.Clean(section)
	if written > 0 {
		logDebug("removed %d stale lock entries from %s", written, section)
	}

	for _, op := range p.Operations {
		if err := ctx.Err(); err != nil {
			return err
		}
		printOperation(i18n.T("Download"), op.Path, op.Language)
		if state.LocallyModified(section, op.Path) {
			logWarning(i18n.T("%s was modified locally and will be overwritten"), op.Path)
		}

		data, err := s.client.Download(ctx, api.DownloadRequest{
			FileFormat: op.Block.FileFormat,
			Language:   op.Language,
			Tags:       op.Block.Tag,
			Version:    op.Version,
			Options:    op.Block.FormatOptions.Download(),
		})
		if err == nil {
			err = writeDownload(op.Path, data)
		}
		if err != nil {
			printResult(false)
			var te *api.TransferError
			if errors.As(err, &te) && te.TagMissing() {
				logInfo("%s", i18n.T(`The tag does not exist in the project yet. Upload the source files first with "locsync push".`))
			}
			if saveErr := saveState(state, written); saveErr != nil {
				logWarning("%v", saveErr)
			}
			return err
		}

		status := state.Record(section, op.Path, op.Language, op.Version, data)
		written++
		printResult(true)
		fmt.Printf("%s %s (%s)\n", i18n.T("Wrote file:"), op.Path, i18n.T(status.String()))
	}

	if err := saveState(state, written); err != nil {
		return err
	}
	if len(p.Errors) > 0 {
		return fmt.Errorf(i18n.N("%d block could not be processed", "%d blocks could not be processed", len(p.Errors)), len(p.Errors))
	}
	return nil
}

// writeDownload writes a downloaded file, creating its directory.
func writeDownload(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write file %q: %w", path, err)
	}
	return nil
}

func saveState(state *syncstate.State, changed int) error {
	if changed == 0 {
		return nil
	}
	return state.Save()
}

// ---------------------------------------------------------------------------
// push / pushTarget
// ---------------------------------------------------------------------------

func newPushCmd() *cobra.Command {
	var force, draft bool

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload source files",
		Long: `Upload the files declared in app.push.source.

Without --force only values that are still empty remotely are written.
A failed upload is reported and the remaining files are still uploaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			if s.cfg.App.Push == nil {
				return fmt.Errorf("%w: %s", config.ErrInvalid, i18n.T("no push.source configured"))
			}
			return runPush(cmd.Context(), s, s.cfg.Sources(), plan.Filter{}, force, draft)
		},
	}

	addUploadFlags(cmd.Flags(), &force, &draft)
	return cmd
}

func newPushTargetCmd() *cobra.Command {
	var (
		force, draft bool
		tags         []string
	)

	cmd := &cobra.Command{
		Use:   "pushTarget",
		Short: "Upload the target files",
		Long:  `Upload the files declared in app.pull.target, e.g. translations made locally.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			if s.cfg.App.Pull == nil {
				return fmt.Errorf("%w: %s", config.ErrInvalid, i18n.T("no pull.target configured"))
			}
			return runPush(cmd.Context(), s, s.cfg.Targets(), plan.Filter{Tags: tags}, force, draft)
		},
	}

	addUploadFlags(cmd.Flags(), &force, &draft)
	addTagFlag(cmd.Flags(), &tags)
	return cmd
}

// runPush uploads every planned file. Transfer errors are collected; a
// connection error stops the command.
func runPush(ctx context.Context, s *session, blocks []config.FileBlock, filter plan.Filter, force, draft bool) error {
	p := plan.Push(s.resolver, blocks, filter)

	for _, path := range p.Skipped {
		logWarning(i18n.T("Skipping %s: the language in its path is not a valid language code"), path)
	}
	for _, e := range p.Errors {
		printOperation(i18n.T("Upload"), e.Path, i18n.T("missing"))
		printResult(false)
		logError("%v", e)
	}
	if len(p.Operations) == 0 && len(p.Errors) == 0 {
		return errors.New(i18n.T("no file to upload was found"))
	}

	failed := len(p.Errors)
	for _, op := range p.Operations {
		if err := ctx.Err(); err != nil {
			return err
		}
		printOperation(i18n.T("Upload"), op.Path, op.Language)

		res, err := s.client.Upload(ctx, api.UploadRequest{
			Path:       op.Path,
			FileFormat: op.Block.FileFormat,
			Language:   op.Language,
			Tags:       op.Block.Tag,
			Options:    op.Block.FormatOptions.Upload(force, draft),
		})
		if err != nil {
			printResult(false)
			var ce *api.ConnectionError
			if errors.As(err, &ce) || ctx.Err() != nil {
				return err
			}
			logError(i18n.T("There was a problem with importing file: %v"), err)
			failed++
			continue
		}
		printUploadResult(res)
	}

	if failed > 0 {
		return fmt.Errorf(i18n.N("%d upload failed", "%d uploads failed", failed), failed)
	}
	return nil
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

type initArgs struct {
	accessToken string
	fileFormat  string
	sourcePath  string
	targetPath  string
	basePath    string
	tag         string
	yes         bool
}

func newInitCmd() *cobra.Command {
	var a initArgs

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .locsync.json for a file format",
		Long: `Create a configuration with one source block in the project's base
language and one target block for every other language.

Android and iOS formats keep the base language in a fixed file; for them the
base file is both pushed and pulled (with export_empty).

Examples:
  locsync init --access-token 'APPID!SECRET' --file-format android_xml
  locsync init --file-format nested_json --target-path ./i18n/<language>.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), a)
		},
	}

	cmd.Flags().StringVar(&a.accessToken, "access-token", "", "Project access token (stored in the config file)")
	cmd.Flags().StringVar(&a.fileFormat, "file-format", "", "File format: "+strings.Join(config.FormatIDs(), ", "))
	cmd.Flags().StringVar(&a.sourcePath, "source-path", "", "Path of the base-language source file (default: target path in the base language)")
	cmd.Flags().StringVar(&a.targetPath, "target-path", "", "Path of the target files, with <language> (default: per format)")
	cmd.Flags().StringVar(&a.basePath, "base-language-path", "", "Path of the base-language file for Android/iOS (default: per format)")
	cmd.Flags().StringVar(&a.tag, "tag", "", "Tag of the configured files (default: per format)")
	cmd.Flags().BoolVarP(&a.yes, "yes", "y", false, "Overwrite an existing config file")
	_ = cmd.MarkFlagRequired("file-format")
	_ = cmd.RegisterFlagCompletionFunc("file-format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		ids := config.FormatIDs()
		completions := make([]string, 0, len(ids))
		for _, id := range ids {
			completions = append(completions, fmt.Sprintf("%s\t%s", id, config.Formats[id].Name))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInit(ctx context.Context, a initArgs) error {
	path := configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		path = filepath.Join(wd, config.FileName)
	}
	if fileExists(path) && !a.yes {
		return fmt.Errorf(i18n.T("%s already exists, use --yes to overwrite it"), path)
	}

	format, ok := config.Formats[a.fileFormat]
	if !ok {
		return fmt.Errorf("%w: unknown file format %q (valid: %s)", config.ErrInvalid, a.fileFormat, strings.Join(config.FormatIDs(), ", "))
	}

	token := a.accessToken
	if token == "" {
		token = tokenFallback()
	}
	if token == "" {
		return fmt.Errorf(i18n.T("no access token: pass --access-token, set %s or run \"locsync auth login\""), config.EnvAccessToken)
	}

	client, err := newClient(token)
	if err != nil {
		return err
	}
	app, err := client.App(ctx)
	if err != nil {
		return err
	}
	if app.BaseLanguage == "" {
		return errors.New(i18n.T("the project has no base language"))
	}
	logInfo(i18n.T("Project %q, base language %s"), app.Name, app.BaseLanguage)

	cfg := buildInitConfig(a, format, app.BaseLanguage)
	if err := conflict.Validate(config.SectionPull, cfg.Targets()); err != nil {
		return err
	}
	if err := config.Write(path, cfg); err != nil {
		return err
	}

	logSuccess(i18n.T("Config file written: %s"), path)
	if a.accessToken == "" {
		logInfo("%s", i18n.T("The access token is not stored in the config file; it is read from the environment or the token store."))
	}
	return nil
}

// buildInitConfig fills the defaults of the chosen format into a.
func buildInitConfig(a initArgs, format config.Format, baseLanguage string) *config.File {
	target := a.targetPath
	if target == "" {
		target = format.DefaultPath
	}
	source := a.sourcePath
	if source == "" {
		source = strings.ReplaceAll(target, config.Placeholder, baseLanguage)
	}
	base := a.basePath
	if base == "" {
		base = format.DefaultBasePath
	}
	tag := a.tag
	if tag == "" {
		tag = format.DefaultTag
	}
	return config.NewFromFormat(a.accessToken, baseLanguage, format, source, target, base, tag)
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the configuration in use",
		Long:  `Print the path and content of the configuration file in use, with the access token masked.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			data, err := maskedConfig(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "\n%s %s\n", headerColor.Sprint(i18n.T("Config file:")), cfg.Path())
			fmt.Fprintln(os.Stderr, strings.Repeat("─", ruleWidth))
			fmt.Println(string(data))

			state, err := syncstate.Load(filepath.Dir(cfg.Path()))
			if err == nil {
				fmt.Fprintf(os.Stderr, "\n%s %s\n", headerColor.Sprint(i18n.T("Sync state:")), state.Summary())
			}
			return nil
		},
	}
}

// maskedConfig renders cfg as JSON with the access token masked.
func maskedConfig(cfg *config.File) ([]byte, error) {
	shown := *cfg
	shown.App.AccessToken = settings.MaskKey(cfg.App.AccessToken)
	return json.MarshalIndent(&shown, "", "  ")
}

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the project's languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			app, err := s.client.App(cmd.Context())
			if err != nil {
				return err
			}
			langs, err := s.client.Languages(cmd.Context(), app.Version)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "\n%s %s\n", headerColor.Sprint(i18n.T("Project:")), app.Name)
			fmt.Fprintln(os.Stderr, strings.Repeat("─", ruleWidth))
			width := langColumnWidth(langs)
			for _, lang := range langs {
				line := langCell(lang, width)
				if lang == app.BaseLanguage {
					line += "  " + successColor.Sprint(i18n.T("(base language)"))
				}
				if local := s.cfg.App.LanguageMap.ToLocal(lang); local != lang {
					line += "  " + fmt.Sprintf(i18n.T("(local: %s)"), local)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

// langColumnWidth returns the width of the widest language code.
func langColumnWidth(langs []string) int {
	w := 0
	for _, l := range langs {
		if len(l) > w {
			w = len(l)
		}
	}
	return w
}

// langCell renders "flag code name" with the code padded to width.
func langCell(lang string, width int) string {
	m := langmeta.Resolve(lang)
	flag := m.Flag
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-*s  %s", flag, width, lang, m.Name)
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored access tokens",
		Long: `Store access tokens outside the project so that .locsync.json can be
committed without secrets.

Examples:
  locsync auth login --token 'APPID!SECRET'  Verify and store a token
  locsync auth login                         Prompt for the token
  locsync auth logout --app APPID            Remove one token
  locsync auth logout                        Remove all tokens
  locsync auth status                        Show stored tokens`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify and store an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				fmt.Fprintf(os.Stderr, "%s", i18n.T("Enter access token: "))
				scanner := bufio.NewScanner(os.Stdin)
				if !scanner.Scan() {
					return errors.New(i18n.T("no input received"))
				}
				token = strings.TrimSpace(scanner.Text())
			}
			if token == "" {
				return errors.New(i18n.T("no access token provided"))
			}

			client, err := newClient(token)
			if err != nil {
				return err
			}
			app, err := client.App(cmd.Context())
			if err != nil {
				return err
			}
			if err := settings.SetToken(token, app.Name); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}

			logSuccess(i18n.T("Token for %q (%s) saved to %s"), app.Name, client.AppID(), settings.FilePath())
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token (default: prompt)")
	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	var appID string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored access tokens",
		Long:  `Remove the token of one app, or all stored tokens when --app is not given.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if appID != "" {
				if err := settings.Remove(appID); err != nil {
					return fmt.Errorf("removing token: %w", err)
				}
				logSuccess(i18n.T("Token for %s removed"), appID)
				return nil
			}
			if err := settings.RemoveAll(); err != nil {
				return err
			}
			logSuccess("%s", i18n.T("All stored tokens removed"))
			return nil
		},
	}

	cmd.Flags().StringVar(&appID, "app", "", "App ID to log out (default: all)")
	_ = cmd.RegisterFlagCompletionFunc("app", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		store := settings.Load()
		completions := make([]string, 0, len(store))
		for _, id := range store.AppIDs() {
			completions = append(completions, fmt.Sprintf("%s\t%s", id, store[id].Name))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"list", "ls"},
		Short:   "Show stored tokens",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stderr, "\n%s\n", headerColor.Sprint(i18n.T("Stored Tokens")))
			fmt.Fprintln(os.Stderr, strings.Repeat("─", ruleWidth))

			store := settings.Load()
			if len(store) == 0 {
				fmt.Fprintf(os.Stderr, "  %s\n", errorColor.Sprint(i18n.T("none")))
			}
			for _, id := range store.AppIDs() {
				e := store[id]
				line := fmt.Sprintf("  %-26s %s", id, settings.MaskKey(e.Token))
				if e.Name != "" {
					line += "  " + e.Name
				}
				if e.Default {
					line += "  " + successColor.Sprint(i18n.T("(default)"))
				}
				fmt.Fprintln(os.Stderr, line)
			}

			fmt.Fprintf(os.Stderr, "\n  %s\n", warnColor.Sprint(i18n.T("Environment Variables")))
			if env := os.Getenv(config.EnvAccessToken); env != "" {
				fmt.Fprintf(os.Stderr, "  %s: %s %s\n", config.EnvAccessToken, successColor.Sprint(settings.MaskKey(env)), i18n.T("(overrides stored tokens)"))
			} else {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", config.EnvAccessToken, errorColor.Sprint(i18n.T("not set")))
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// fileExists returns true if the file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
