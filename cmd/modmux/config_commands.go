package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/pelletier/go-toml/v2"

	"github.com/Gaurav-Gosain/modmux/internal/config"
	"github.com/Gaurav-Gosain/modmux/internal/keymap"
)

// resolveConfigPath returns --config or the user config path
func resolveConfigPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return "", fmt.Errorf("could not determine config path: %w", err)
	}
	return path, nil
}

// printConfigPath prints the config file path
func printConfigPath() error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// showConfig prints the effective configuration as TOML
func showConfig(w io.Writer) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintf(w, "# %s\n", path)
	_, err = w.Write(data)
	return err
}

// editConfigFile opens the config file in $EDITOR
func editConfigFile() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	// Ensure config file exists (create default if needed)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("Config file doesn't exist, creating default at: %s\n", configPath)
		if err := config.Save(config.DefaultConfig(), configPath); err != nil {
			return fmt.Errorf("could not create config file: %w", err)
		}
	}

	// Get editor from environment
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		// Try common editors
		for _, e := range []string{"vim", "vi", "nano", "emacs"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Please set $EDITOR environment variable")
	}

	cmd := exec.Command(editor, configPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}

	// Report mistakes right away instead of at the next session.
	if _, err := config.Load(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: configuration is invalid:\n%v\n", err)
	}
	return nil
}

// resetConfigToDefaults resets the configuration file to default settings
func resetConfigToDefaults() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	// Check if config exists and ask for confirmation
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Warning: This will overwrite your existing configuration at:\n")
		fmt.Printf("  %s\n\n", configPath)
		fmt.Printf("Are you sure you want to reset to defaults? (yes/no): ")

		var response string
		_, _ = fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))

		if response != "yes" && response != "y" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if err := config.Save(config.DefaultConfig(), configPath); err != nil {
		return err
	}

	fmt.Printf("Configuration reset to defaults\n")
	fmt.Printf("  Location: %s\n", configPath)
	fmt.Println("\nYou can customize it with: modmux config edit")
	return nil
}

// listKeybindings prints the intercepted keys and the accepted key names
func listKeybindings(w io.Writer) error {
	cfg, _, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintln(os.Stderr, "Using default keys...")
		cfg = config.DefaultConfig()
	}

	printKeybindingsTable(w, config.GetKeybindings(cfg))
	printKeyNamesTable(w)
	return nil
}

func tableStyles() (header, cell lipgloss.Style) {
	header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)
	cell = lipgloss.NewStyle().
		Padding(0, 1)
	return header, cell
}

func newTable(headers ...string) *table.Table {
	headerStyle, cellStyle := tableStyles()
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return cellStyle
		})
}

// printKeybindingsTable prints keybindings in a pretty table format
func printKeybindingsTable(w io.Writer, sections []config.KeybindingSection) {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Render("modmux Intercepted Keys"))
	fmt.Fprintln(w)

	for _, section := range sections {
		rows := make([][]string, 0, len(section.Bindings))
		for _, b := range section.Bindings {
			rows = append(rows, []string{b.Key, b.Description})
		}
		if len(rows) == 0 {
			continue
		}

		title := section.Title
		if section.Condition == config.ConditionOSD {
			title += " (modules with OSD enabled)"
		}
		fmt.Fprintln(w, sectionStyle.Render(title))
		fmt.Fprintln(w, newTable("Keys", "Action").Rows(rows...).Render())
		fmt.Fprintln(w)
	}

	note := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true).
		Render("Note: a key whose press was intercepted has its release intercepted too, even across module changes.")
	fmt.Fprintln(w, note)
	fmt.Fprintln(w)
}

// printKeyNamesTable lists the key names accepted by scripts and the config.
func printKeyNamesTable(w io.Writer) {
	codes := keymap.Names()
	const perRow = 4
	var rows [][]string
	for i := 0; i < len(codes); i += perRow {
		var row []string
		for _, code := range codes[i:min(i+perRow, len(codes))] {
			row = append(row, fmt.Sprintf("%-10s 0x%03x", code.String(), uint16(code)))
		}
		for len(row) < perRow {
			row = append(row, "")
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render("KEY NAMES"))
	fmt.Fprintln(w, newTable("Name  Code", "Name  Code", "Name  Code", "Name  Code").Rows(rows...).Render())
	fmt.Fprintln(w)
}
