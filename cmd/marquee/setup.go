package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/mmcdole/marquee/internal/adapter"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/tui/components"
	"golang.org/x/term"
)

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

// runSetupFlow handles the initial setup when no API key is configured
func runSetupFlow(ctx context.Context) error {
	fmt.Println()
	fmt.Println("Welcome to Marquee!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for {
		key, err := promptSecret(reader, "Movie database API key or read token: ")
		if err != nil {
			return err
		}
		if key == "" {
			fmt.Println("The API key cannot be empty. Please try again.")
			continue
		}

		cfg.Metadata.APIKey = key
		fmt.Println()
		if err := verifyWithSpinner(ctx); err != nil {
			fmt.Printf("\n✗ Could not reach the movie database: %v\n", err)
			fmt.Println("Please check the key and try again.")
			fmt.Println()
			continue
		}
		break
	}

	fmt.Println()
	fmt.Print("Cloud library URL (optional, enter to skip): ")
	cloudURL, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	cfg.Cloud.URL = strings.TrimSpace(cloudURL)

	if cfg.Cloud.URL != "" {
		anonKey, err := promptSecret(reader, "Cloud library anon key: ")
		if err != nil {
			return err
		}
		cfg.Cloud.AnonKey = anonKey
	}

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run marquee again to start browsing.")

	return nil
}

// promptSecret reads a line without echo when stdin is a terminal
func promptSecret(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	if !term.IsTerminal(int(syscall.Stdin)) {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// verifyWithSpinner checks the API key with a visual spinner
func verifyWithSpinner(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, 15*time.Second)
	defer cancel()

	client := newMetadataClient()
	resultCh := make(chan error, 1)
	go func() {
		_, err := client.Trending(ctx, domain.KindMovie)
		resultCh <- err
	}()

	frames := components.SpinnerFrames
	frame := 0
	fmt.Printf("\r%s Checking API key...", frames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Println("✓ API key accepted")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking API key...", frames[frame%len(frames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("verification timed out")
		}
	}
}
