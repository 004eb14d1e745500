package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vk/movegen/internal/app"
	"github.com/vk/movegen/internal/dump"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	aliasColor = color.New(color.FgCyan)
	addrColor  = color.New(color.FgYellow)
)

// DefaultManifest is read by generate when no manifest is named.
const DefaultManifest = "movegen.hcl"

func newGenerateCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [MANIFEST...]",
		Short: "Generate bindings for every package a manifest declares",
		Long: `Generate reads one or more manifest files, or directories of .hcl files,
and writes the bindings they declare. Nothing is written unless every
binding was generated.`,
		Args: args(cobra.ArbitraryArgs),
		RunE: func(cmd *cobra.Command, manifests []string) error {
			if len(manifests) == 0 {
				manifests = []string{o.v.GetString("manifest")}
			}
			a, err := o.newApp(cmd, app.Config{
				ManifestPaths: manifests,
				OutputDir:     o.v.GetString("out"),
			})
			if err != nil {
				return err
			}
			report, err := a.Generate(cmd.Context())
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}
	o.v.SetDefault("manifest", DefaultManifest)
	cmd.Flags().StringP("out", "o", "", "output directory, overriding the manifest")
	cobra.CheckErr(o.v.BindPFlag("out", cmd.Flags().Lookup("out")))
	return cmd
}

func printReport(cmd *cobra.Command, r *app.Report) {
	w := cmd.OutOrStdout()
	for _, b := range r.Bindings {
		fmt.Fprintf(w, "%s %s %s (version %d, %d modules) -> %s\n",
			okColor.Sprint("generated"),
			aliasColor.Sprint(b.Alias),
			addrColor.Sprint(b.Address.ShortString()),
			b.Version, b.Modules, b.ImportPath)
	}
	fmt.Fprintf(w, "%s %d files in %s (%d unchanged)\n",
		okColor.Sprint("wrote"), r.Output.Written, r.Dir, r.Output.Unchanged)
}

func newResolveCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve REF",
		Short: "Print the address a package reference resolves to",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, refs []string) error {
			a, err := o.newApp(cmd, app.Config{})
			if err != nil {
				return err
			}
			addr, err := a.Resolve(cmd.Context(), refs[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr.String())
			return nil
		},
	}
	addNetworkFlags(cmd)
	return cmd
}

func newDumpCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump REF",
		Short: "Save a package's decoded schema for inspection",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, refs []string) error {
			a, err := o.newApp(cmd, app.Config{})
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("file")
			pkg, err := a.Dump(cmd.Context(), refs[0], path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (version %d) to %s\n",
				okColor.Sprint("dumped"), addrColor.Sprint(pkg.Address.ShortString()), pkg.Version, path)
			return nil
		},
	}
	addNetworkFlags(cmd)
	cmd.Flags().StringP("file", "f", "package.msgpack", "dump file to write")
	return cmd
}

func newInspectCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize a schema dump",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, files []string) error {
			a, err := o.newApp(cmd, app.Config{})
			if err != nil {
				return err
			}
			pkg, err := a.Inspect(files[0])
			if err != nil {
				return err
			}
			dump.Summary(cmd.OutOrStdout(), pkg)
			return nil
		},
	}
}
