package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/arch/arm/armasm"

	"github.com/jkki-i/wie/internal/app"
	"github.com/jkki-i/wie/internal/backend"
	"github.com/jkki-i/wie/internal/ktf"
	"github.com/jkki-i/wie/internal/log"
	"github.com/jkki-i/wie/internal/task"
	tracepkg "github.com/jkki-i/wie/internal/trace"
	"github.com/jkki-i/wie/internal/ui/colorize"
	_ "github.com/jkki-i/wie/internal/wipij/classes"
)

var (
	verbose  bool
	headless bool
	dataDir  string
	trace    bool
	maxInsn  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wie <appdir>",
		Short: "Run legacy WIPI feature-phone applications",
		Long: `wie emulates the WIPI mobile-phone application runtime so legacy Korean
feature-phone applications can run on a modern host.

The app directory contains an app.yaml descriptor, the application archive,
and - for the native (KTF) track - the original ARM client binary. The
client executes under Unicorn Engine while platform calls are intercepted
and served by host implementations.

Examples:
  wie apps/mygame             # run with the terminal window
  wie apps/mygame --headless  # run without rendering
  wie info apps/mygame        # show descriptor and mounted resources`,
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		RunE:                  runApp,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose debug output")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run without rendering the screen")
	rootCmd.Flags().BoolVar(&trace, "trace", false, "trace every executed instruction")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory for database records")

	infoCmd := &cobra.Command{
		Use:   "info <appdir>",
		Short: "Show application information",
		Args:  cobra.ExactArgs(1),
		RunE:  showInfo,
	}
	rootCmd.AddCommand(infoCmd)

	disasmCmd := &cobra.Command{
		Use:   "disasm <appdir>",
		Short: "Disassemble the start of the client binary",
		Args:  cobra.ExactArgs(1),
		RunE:  showDisasm,
	}
	disasmCmd.Flags().IntVarP(&maxInsn, "num", "n", 64, "max instructions to show")
	rootCmd.AddCommand(disasmCmd)

	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		// Fatal emulator errors embed register/stack dumps; colorize them.
		fmt.Fprintln(os.Stderr, colorize.Dump(err.Error()))
		os.Exit(1)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wie"
	}
	return home + "/.wie"
}

func runApp(cmd *cobra.Command, args []string) error {
	log.Init(verbose)

	dir := args[0]
	desc, err := app.LoadDescriptor(dir)
	if err != nil {
		return err
	}

	if desc.Vendor == app.VendorJvm {
		return fmt.Errorf("app %s uses the managed JVM track, which this build does not execute", desc.ID)
	}

	var window backend.Window
	if headless {
		window = &backend.NullWindow{W: desc.Width, H: desc.Height}
	} else {
		window = backend.NewTerminalWindow(desc.Width, desc.Height, os.Stdout)
	}

	sys := backend.NewSystem(desc.ID, dataDir, window)

	if archive, err := desc.ReadArchive(dir); err != nil {
		return err
	} else if archive != nil {
		if err := sys.MountZip(archive); err != nil {
			return err
		}
	}

	clientBin, err := desc.ReadBinary(dir)
	if err != nil {
		return err
	}

	exec := task.NewExecutor()
	module, err := ktf.Load(clientBin, sys, exec)
	if err != nil {
		return err
	}
	defer module.Core().Close()

	var collector tracepkg.Collector
	if trace {
		log.L.SetOnTrace(func(pc uint32, category, name, detail string) {
			collector.Add(&tracepkg.Event{
				PC:       pc,
				Category: category,
				Name:     name,
				Detail:   detail,
				At:       time.Now(),
			})
		})
		if err := module.Core().EnableTrace(); err != nil {
			return err
		}
		defer func() {
			fmt.Fprintf(os.Stderr, "%d trace events collected\n", len(collector.Events()))
		}()
	}

	if _, _, err := module.BindInterfaces(); err != nil {
		return err
	}

	if err := module.StartApp(desc.MainClass); err != nil {
		return err
	}

	exec.Run()

	return sys.Repaint()
}

// showDisasm decodes the leading ARM-mode instructions of the client
// binary. Thumb regions will not decode; undecodable words print raw.
func showDisasm(cmd *cobra.Command, args []string) error {
	dir := args[0]
	desc, err := app.LoadDescriptor(dir)
	if err != nil {
		return err
	}

	data, err := desc.ReadBinary(dir)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for i := 0; i+4 <= len(data) && i/4 < maxInsn; i += 4 {
		inst, err := armasm.Decode(data[i:i+4], armasm.ModeARM)
		if err != nil {
			fmt.Fprintf(&sb, "%8x: .word 0x%02x%02x%02x%02x\n", i, data[i+3], data[i+2], data[i+1], data[i])
			continue
		}
		fmt.Fprintf(&sb, "%8x: %s\n", i, inst.String())
	}

	fmt.Print(colorize.Asm(sb.String()))

	return nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	log.Init(verbose)

	dir := args[0]
	desc, err := app.LoadDescriptor(dir)
	if err != nil {
		return err
	}

	fmt.Println(desc.ID)
	fmt.Printf("vendor:     %s\n", desc.Vendor)
	fmt.Printf("main class: %s\n", desc.MainClass)
	fmt.Printf("screen:     %dx%d\n", desc.Width, desc.Height)

	archive, err := desc.ReadArchive(dir)
	if err != nil {
		return err
	}
	if archive == nil {
		return nil
	}

	sys := backend.NewSystem(desc.ID, dataDir, &backend.NullWindow{W: desc.Width, H: desc.Height})
	if err := sys.MountZip(archive); err != nil {
		return err
	}

	fmt.Println("resources:")
	for _, path := range sys.Resource().Paths() {
		id, _ := sys.Resource().Id(path)
		size, _ := sys.Resource().Size(id)
		fmt.Printf("  %4d  %8d  %s\n", id, size, path)
	}

	return nil
}
