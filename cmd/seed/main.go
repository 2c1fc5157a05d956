// Command seed fills a development backend with sample content and notes
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/auth"
	"cmsadmin/pkg/config"
	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/logging"
	"cmsadmin/pkg/models"
	"cmsadmin/pkg/services"
)

const loremIpsum = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. " +
	"Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. " +
	"Ut enim ad minim veniam, quis nostrud exercitation ullamco laboris."

// sampleContent returns one record per content type and site page
func sampleContent() []models.Content {
	var out []models.Content
	for _, page := range models.ContentPages {
		for _, t := range models.ContentTypes {
			c := models.NewContent()
			c.Type = t
			c.Page = page.Value
			c.Key = fmt.Sprintf("%s_%s_sample", page.Value, t)
			c.Title = fmt.Sprintf("%s %s", page.Label, t)
			c.Body = loremIpsum
			if t == models.ContentImage {
				c.ImageURL = "https://picsum.photos/800/400"
			}
			out = append(out, c)
		}
	}
	return out
}

// sampleNotes returns one note per note type, dated over the coming days
func sampleNotes(now time.Time) []models.Note {
	var out []models.Note
	for i, t := range models.NoteTypes {
		n := models.NewNote(now.AddDate(0, 0, i))
		n.Type = t
		n.Title = fmt.Sprintf("Sample %s", t)
		n.Description = loremIpsum
		n.Priority = models.Priorities[i%len(models.Priorities)]
		out = append(out, n)
	}
	return out
}

func main() {
	configPath := flag.String("config", config.GetConfigFilePath(), "config file")
	user := flag.String("username", "admin", "backend username")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	fmt.Print("Enter password: ")
	reader := bufio.NewReader(os.Stdin)
	pw, err := reader.ReadString('\n')
	if err != nil && pw == "" {
		fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
		os.Exit(1)
	}
	pw = strings.TrimSpace(pw)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := api.NewWithTimeout(cfg.APIURL, cfg.RequestTimeout(), logger.Named("api"))
	resp, err := auth.NewClient(client, cfg.LoginMode).Login(ctx, models.Credentials{Username: *user, Password: pw})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Login failed: %s\n", errors.UserMessage(err))
		os.Exit(1)
	}
	caller := client.Bind(api.NewStaticToken(resp.AccessToken, nil))

	contentSvc := services.NewContentService(caller, logger)
	for _, c := range sampleContent() {
		saved, err := contentSvc.Create(ctx, c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create content %s: %s\n", c.Key, errors.UserMessage(err))
			os.Exit(1)
		}
		fmt.Printf("Created content %d (%s)\n", saved.ID, c.Key)
	}

	noteSvc := services.NewNoteService(caller, logger)
	for _, n := range sampleNotes(time.Now()) {
		saved, err := noteSvc.Create(ctx, n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create note %q: %s\n", n.Title, errors.UserMessage(err))
			os.Exit(1)
		}
		fmt.Printf("Created note %d (%s)\n", saved.ID, n.Title)
	}
}
