// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"loandoc-workers/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)

	// Add command flags
	categoryAdd := addCmd.String("category", "", "Document category key (e.g., bank_statements)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Bank Statements)")
	extensions := addCmd.String("extensions", ".pdf", "Comma-separated allowed extensions")
	minSize := addCmd.Int("minSize", 5120, "Minimum content size in bytes")
	addCmd.StringVar(&registryPath, "path", "configs/document-registry.json", "Path to registry file")

	// Update command flags
	categoryUpdate := updateCmd.String("category", "", "Document category key to update")
	field := updateCmd.String("field", "", "Field to update (displayName, extensions, minSize)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&registryPath, "path", "configs/document-registry.json", "Path to registry file")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/document-registry.json", "Path to registry file")

	// Show command flags
	showCmd.StringVar(&registryPath, "path", "", "Path to registry file (empty for compiled-in defaults)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *categoryAdd == "" || *displayName == "" {
			fmt.Println("Error: category and displayName are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		rule := registry.CategoryRule{
			DisplayName:       *displayName,
			AllowedExtensions: splitExtensions(*extensions),
			MinSizeBytes:      *minSize,
		}
		if err := addCategory(*categoryAdd, rule); err != nil {
			fmt.Printf("Error adding category: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added category: %s\n", *categoryAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *categoryUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: category, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateCategory(*categoryUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating category: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated category %s, field %s to %s\n", *categoryUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "show":
		showCmd.Parse(os.Args[2:])
		if err := showRegistry(); err != nil {
			fmt.Printf("Error reading registry: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func splitExtensions(raw string) []string {
	var exts []string
	for _, ext := range strings.Split(raw, ",") {
		ext = strings.TrimSpace(strings.ToLower(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

func addCategory(category string, rule registry.CategoryRule) error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		// If file doesn't exist, start from the compiled-in defaults
		if errors.Is(err, os.ErrNotExist) {
			reg = registry.Default()
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	if _, exists := reg.Categories[category]; exists {
		return fmt.Errorf("category %s already exists", category)
	}

	if reg.Categories == nil {
		reg.Categories = map[string]registry.CategoryRule{}
	}
	reg.Categories[category] = rule
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	return saveRegistry(reg, registryPath)
}

func updateCategory(category, field, value string) error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	rule, found := reg.Categories[category]
	if !found {
		return fmt.Errorf("category %s not found", category)
	}

	switch field {
	case "displayName":
		rule.DisplayName = value
	case "extensions":
		rule.AllowedExtensions = splitExtensions(value)
	case "minSize":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid minSize value: %w", err)
		}
		rule.MinSizeBytes = size
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.Categories[category] = rule
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		return err
	}

	if len(reg.Categories) == 0 {
		return fmt.Errorf("registry contains no categories")
	}

	for category, rule := range reg.Categories {
		if rule.DisplayName == "" {
			return fmt.Errorf("category %s missing required field: displayName", category)
		}
		if len(rule.AllowedExtensions) == 0 {
			return fmt.Errorf("category %s has no allowed extensions", category)
		}
	}

	// Every category an application type or the always-required set names
	// must have a rule.
	for _, category := range reg.AlwaysRequired {
		if _, ok := reg.Categories[category]; !ok {
			return fmt.Errorf("alwaysRequired references unknown category: %s", category)
		}
	}
	for appType, profile := range reg.ApplicationTypes {
		for _, category := range append(profile.Required, profile.Optional...) {
			if _, ok := reg.Categories[category]; !ok {
				return fmt.Errorf("application type %s references unknown category: %s", appType, category)
			}
		}
	}

	fmt.Printf("Registry validation passed. Found %d categories, %d application types.\n",
		len(reg.Categories), len(reg.ApplicationTypes))
	return nil
}

func showRegistry() error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		return err
	}

	categories := make([]string, 0, len(reg.Categories))
	for category := range reg.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	fmt.Printf("Registry version %s\n\nCategories:\n", reg.Version)
	for _, category := range categories {
		rule := reg.Categories[category]
		fmt.Printf("  %-28s %-26s min %7d bytes  %s\n",
			category, rule.DisplayName, rule.MinSizeBytes, strings.Join(rule.AllowedExtensions, " "))
	}

	appTypes := make([]string, 0, len(reg.ApplicationTypes))
	for appType := range reg.ApplicationTypes {
		appTypes = append(appTypes, appType)
	}
	sort.Strings(appTypes)

	fmt.Println("\nApplication types:")
	for _, appType := range appTypes {
		profile := reg.ApplicationTypes[appType]
		fmt.Printf("  %-24s required: %s\n", appType, strings.Join(profile.Required, ", "))
		if len(profile.Optional) > 0 {
			fmt.Printf("  %-24s optional: %s\n", "", strings.Join(profile.Optional, ", "))
		}
	}
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.CategoryRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new document category to the registry
  update   Update an existing category's field
  validate Validate the registry file
  show     Print the registry contents
  help     Show this help message

Examples:
  registry-updater add -category equipment_quote -displayName "Equipment Quote" -extensions .pdf,.jpg -minSize 10000
  registry-updater update -category bank_statements -field minSize -value 25000
  registry-updater validate -path configs/document-registry.json
  registry-updater show

Use 'registry-updater <command> -h' for more information about a command.

`)
}
