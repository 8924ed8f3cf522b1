package cli

import (
	"fmt"
	"os"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/views"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	queryFlag    string
	uploadFlag   string
	nameFlag     string
	textFlag     string
	homeFileFlag string
)

var viewCmd = &cobra.Command{
	Use:   "view <key>",
	Short: "Render one dashboard view",
	Long: `Render one of the dashboard views in the terminal.

Keys: home, dashboard, search, top-rated, insights, upload, feedback.

Dataset views read the --source CSV, or the --file CSV when given. The upload
view previews --file; the feedback view validates --name and --text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := views.ParseKey(args[0])
		if err != nil {
			return err
		}

		home, err := views.LoadHome(homeFileFlag)
		if err != nil {
			return err
		}

		req, err := buildRequest(cmd, key)
		if err != nil {
			return err
		}

		out, err := RenderPayload(views.NewRouter(home).Render(key, req))
		if err != nil {
			return err
		}
		pterm.Print(out)
		return nil
	},
}

// buildRequest loads only what the view reads: no fetch for home or feedback.
func buildRequest(cmd *cobra.Command, key views.Key) (views.Request, error) {
	req := views.Request{Query: queryFlag}

	switch key {
	case views.Upload:
		if uploadFlag == "" {
			return req, nil
		}
		data, err := os.ReadFile(uploadFlag)
		if err != nil {
			return req, fmt.Errorf("reading upload: %w", err)
		}
		req.Upload = &views.UploadInput{Name: uploadFlag, Data: data}
		return req, nil
	case views.Feedback:
		if cmd.Flags().Changed("name") || cmd.Flags().Changed("text") {
			req.Feedback = &views.FeedbackInput{Name: nameFlag, Text: textFlag}
		}
		return req, nil
	}

	if !key.UsesDataset() {
		return req, nil
	}
	if uploadFlag != "" {
		d, err := readFile(uploadFlag)
		if err != nil {
			return req, err
		}
		req.Dataset = d
		return req, nil
	}

	d, err := loadPrimary(cmd.Context())
	if err != nil {
		return req, err
	}
	req.Dataset = d
	return req, nil
}

// readFile parses a local CSV the same way uploads are parsed.
func readFile(path string) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	res, err := views.ParseUpload(path, data)
	if err != nil {
		return nil, err
	}
	if n := len(res.Errors); n > 0 {
		pterm.Warning.Printfln("%s: skipped %d malformed row(s)", path, n)
	}
	return res.Dataset, nil
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the navigation keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		data := pterm.TableData{{"Key", "Label", "Reads dataset"}}
		for _, k := range views.AllKeys() {
			data = append(data, []string{string(k.Key), k.Label, fmt.Sprint(k.UsesDataset)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	viewCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "search term for the search view")
	viewCmd.Flags().StringVarP(&uploadFlag, "file", "f", "", "local CSV to upload or to read instead of --source")
	viewCmd.Flags().StringVar(&nameFlag, "name", "", "feedback name")
	viewCmd.Flags().StringVar(&textFlag, "text", "", "feedback text")
	viewCmd.Flags().StringVar(&homeFileFlag, "home", "", "YAML file overriding the home page content")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(keysCmd)
}
