package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"yatube/app/config"
)

// Version is reported by `yatube version`.
const Version = "1.0.0"

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := Run(context.Background(), os.Args[1:], nil, os.Stdout, os.Stderr); err != nil {
		return 1
	}
	return 0
}

// NewRootCommand builds the yatube command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "yatube",
		Short:         "A small blogging platform",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file (default $YATUBE_CONFIG_PATH or ~/.config/yatube.toml)")

	configCmd := &cobra.Command{Use: "config", Short: "Manage configuration"}
	configCmd.AddCommand(configInitCommand(), configListCommand())

	dbCmd := &cobra.Command{Use: "db", Short: "Manage the database"}
	dbCmd.AddCommand(dbMigrateCommand(), dbBackupCommand(), dbRestoreCommand())

	authorCmd := &cobra.Command{Use: "author", Short: "Manage authors"}
	authorCmd.AddCommand(authorAddCommand(), authorListCommand())

	groupCmd := &cobra.Command{Use: "group", Short: "Manage groups"}
	groupCmd.AddCommand(groupAddCommand(), groupListCommand())

	postCmd := &cobra.Command{Use: "post", Short: "Manage posts"}
	postCmd.AddCommand(postDeleteCommand())

	root.AddCommand(serveCommand(), versionCommand(), configCmd, dbCmd, authorCmd, groupCmd, postCmd)
	return root
}

// configPath resolves the --config flag against the defaults.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	defaults, err := config.GetDefaults()
	if err != nil {
		return "", fmt.Errorf("getting defaults: %w", err)
	}
	return defaults["config_path"], nil
}

func readConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.ReadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates an App. The caller must defer app.Close().
func newApp(cmd *cobra.Command) (*App, error) {
	cfg, err := readConfig(cmd)
	if err != nil {
		return nil, err
	}
	a, err := NewApp(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}

			a, err := NewApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initializing app: %w", err)
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address, overrides the config file")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "yatube version %s\n", Version)
		},
	}
}

func configInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults, err := config.GetDefaults()
			if err != nil {
				return fmt.Errorf("failed to get defaults: %w", err)
			}
			path, err := configPath(cmd)
			if err != nil {
				return err
			}

			cfg := config.NewConfig(defaults["base_dir"])
			if storage, _ := cmd.Flags().GetString("storage"); storage == "sqlite" {
				cfg.Storage = config.StorageConfig{Type: "sqlite", Path: filepath.Join(defaults["base_dir"], "yatube.db")}
			}

			if err := config.Init(path, cfg); err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration initialized at %s\n", path)
			fmt.Fprintf(out, "Base Dir: %s\n", cfg.BaseDir)
			fmt.Fprintf(out, "Storage:  %s\n", cfg.Storage.Type)
			return nil
		},
	}
	cmd.Flags().String("storage", "badger", "storage backend: badger or sqlite")
	return cmd
}

func configListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "View configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration from %s:\n\n", path)
			fmt.Fprintf(out, "Addr:     %s\n", cfg.Addr)
			fmt.Fprintf(out, "Base Dir: %s\n", cfg.BaseDir)
			fmt.Fprintf(out, "Log Dir:  %s\n", cfg.LogDir)
			fmt.Fprintf(out, "Storage:  %s %s\n", cfg.Storage.Type, cfg.Storage.Path)
			fmt.Fprintf(out, "Images:   %s\n", cfg.Images.Type)
			fmt.Fprintf(out, "Cache:    %s (ttl %s)\n", cfg.Cache.Type, cfg.Cache.TTL.Duration)
			fmt.Fprintf(out, "Per Page: %d\n", cfg.Feed.PerPage)
			return nil
		},
	}
}

func dbMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			migrated, err := migrateStorage(cfg.Storage)
			if err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			if !migrated {
				fmt.Fprintf(cmd.OutOrStdout(), "Storage %q has no schema to migrate\n", cfg.Storage.Type)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")
			return nil
		},
	}
}

func dbBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [FILE]",
		Short: "Create a backup of the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var target string
			if len(args) > 0 {
				target = args[0]
			} else {
				dir := filepath.Join(a.cfg.BaseDir, "backups")
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating backup directory: %w", err)
				}
				target = filepath.Join(dir, fmt.Sprintf("backup_%d.bak", time.Now().Unix()))
			}

			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("creating backup file: %w", err)
			}
			if err := a.Backup(f); err != nil {
				f.Close()
				os.Remove(target)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing backup file: %w", err)
			}

			size := "unknown size"
			if fi, err := os.Stat(target); err == nil {
				size = humanize.Bytes(uint64(fi.Size()))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database backed up to %s (%s)\n", target, size)
			return nil
		},
	}
}

func dbRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore FILE",
		Short: "Restore the database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backupFile := args[0]
			fi, err := os.Stat(backupFile)
			if err != nil {
				return fmt.Errorf("backup file: %w", err)
			}
			if fi.Size() == 0 {
				return fmt.Errorf("backup file is empty: %s", backupFile)
			}

			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Storage.Type != "badger" && cfg.Storage.Type != "" {
				return fmt.Errorf("restore needs badger storage, configured storage is %q", cfg.Storage.Type)
			}

			if !isEmptyDir(cfg.Storage.Path) {
				force, _ := cmd.Flags().GetBool("yes")
				if !force {
					ok, err := confirm(cmd, "Existing database found. Do you want to replace it? [y/N] ")
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled")
						return nil
					}
				}
				if err := os.RemoveAll(cfg.Storage.Path); err != nil {
					return fmt.Errorf("removing existing database: %w", err)
				}
			}

			a, err := NewApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initializing app: %w", err)
			}
			defer a.Close()

			f, err := os.Open(backupFile)
			if err != nil {
				return fmt.Errorf("opening backup file: %w", err)
			}
			defer f.Close()

			if err := a.Restore(f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database restored from %s\n", backupFile)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "replace an existing database without asking")
	return cmd
}

func authorAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add USERNAME",
		Short: "Register an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fullName, _ := cmd.Flags().GetString("full-name")

			password, err := readPassword(cmd)
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			author, err := a.Admin.CreateAuthor(cmd.Context(), args[0], fullName, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Author %s created\n", author.Username)
			return nil
		},
	}
	cmd.Flags().String("full-name", "", "display name")
	return cmd
}

func authorListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			authors, err := a.Admin.ListAuthors()
			if err != nil {
				return err
			}
			if len(authors) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No authors.")
				return nil
			}
			for _, au := range authors {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-30s joined %s\n", au.Username, au.FullName, humanize.Time(au.CreatedAt))
			}
			return nil
		},
	}
}

func groupAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add SLUG TITLE",
		Short: "Create a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			group, err := a.Admin.CreateGroup(cmd.Context(), args[0], args[1], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Group %s created\n", group.Slug)
			return nil
		},
	}
	cmd.Flags().String("description", "", "group description")
	return cmd
}

func groupListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			groups, err := a.Admin.ListGroups()
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No groups.")
				return nil
			}
			for _, g := range groups {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", g.Slug, g.Title)
			}
			return nil
		},
	}
}

func postDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a post with its comments and image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid post id %q", args[0])
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Posts.DeletePost(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Post %d deleted\n", id)
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and otherwise reads one
// line from stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		fmt.Fprint(cmd.ErrOrStderr(), "Password (again): ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return string(first), nil
	}
	return readLine(in)
}

func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, err := readLine(cmd.InOrStdin())
	if err != nil {
		return false, err
	}
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y", nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func isEmptyDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err != nil || len(entries) == 0
}

// Run executes args against a fresh command tree.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
