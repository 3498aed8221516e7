package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maxfahl/Loom-sub002/internal/app"
	"github.com/maxfahl/Loom-sub002/internal/errors"
	"github.com/maxfahl/Loom-sub002/internal/terraform"
)

var terraformCmd = &cobra.Command{
	Use:   "terraform",
	Short: "Terraform module helpers",
}

var terraformSetVersionCmd = &cobra.Command{
	Use:   "set-version <file.tf> <module> <version>",
	Short: "Set the version of a module block",
	Long: `Set the version attribute of the module block with the given name, keeping
the rest of the file, comments included, as it is. The file is not touched
when the version already matches.`,
	Args: cobra.ExactArgs(3),
	RunE: runTerraformSetVersion,
}

var terraformModulesCmd = &cobra.Command{
	Use:   "modules <file.tf>",
	Short: "List module blocks with their source and version",
	Args:  cobra.ExactArgs(1),
	RunE:  runTerraformModules,
}

var terraformDryRun bool

func init() {
	terraformSetVersionCmd.Flags().BoolVar(&terraformDryRun, "dry-run", false, "Print the updated file instead of writing it")
	terraformCmd.AddCommand(terraformSetVersionCmd)
	terraformCmd.AddCommand(terraformModulesCmd)
	rootCmd.AddCommand(terraformCmd)
}

func runTerraformSetVersion(cmd *cobra.Command, args []string) error {
	path, module, version := args[0], args[1], args[2]

	src, err := readInput(path)
	if err != nil {
		return err
	}

	update, err := terraform.SetModuleVersion(src, path, module, version)
	if err != nil {
		if errors.Is(err, terraform.ErrModuleNotFound) || errors.Is(err, terraform.ErrNoVersion) {
			return errors.Wrap(errors.ExitGeneralError, "cannot set module version", err)
		}
		return errors.ParseError(path, err)
	}

	if terraformDryRun {
		_, err := cmd.OutOrStdout().Write(update.Content)
		return err
	}

	if !update.Changed {
		logInfo("Module %q is already at version %s", module, version)
		return nil
	}

	if err := app.Default.FS.WriteFile(path, update.Content, 0644); err != nil {
		return errors.Wrap(errors.ExitGeneralError, "failed to write "+path, err)
	}
	logSuccess("Updated module %q from %s to %s in %s", module, update.OldVersion, version, path)
	return nil
}

func runTerraformModules(cmd *cobra.Command, args []string) error {
	path := args[0]

	src, err := readInput(path)
	if err != nil {
		return err
	}

	modules, err := terraform.ListModules(src, path)
	if err != nil {
		return errors.ParseError(path, err)
	}

	if len(modules) == 0 {
		logInfo("No module blocks in %s", path)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODULE\tSOURCE\tVERSION\tLINE")
	fmt.Fprintln(w, "------\t------\t-------\t----")

	for _, m := range modules {
		version := m.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", m.Name, m.Source, version, m.Line)
	}

	return w.Flush()
}
