package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/starius/restclient"
	"github.com/starius/restclient/auth"
	"github.com/starius/restclient/closingclient"
	"github.com/starius/restclient/debugclient"
	"github.com/starius/restclient/example"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("RESTCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var configFile string
	root := &cobra.Command{
		Use:           "books",
		Short:         "Client of the example book server",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return nil
			}
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config %s: %w", configFile, err)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (yaml, json or toml)")
	flags.String("base-url", "http://127.0.0.1:8080", "Base URL of the book server")
	flags.String("secret", "", "HMAC secret to sign bearer tokens")
	flags.String("token", "", "Value of X-Token header for create")
	flags.Bool("debug", false, "Log requests as curl commands")
	flags.Duration("timeout", 10*time.Second, "Timeout of one request")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	app := &cliApp{v: v}
	root.AddCommand(
		app.listCmd(),
		app.getCmd(),
		app.getManyCmd(),
		app.createCmd(),
		app.deleteCmd(),
		app.coverCmd(),
		app.exportCmd(),
		app.sinceCmd(),
		app.openapiCmd(),
	)
	return root
}

type cliApp struct {
	v *viper.Viper
}

func (a *cliApp) options() (*zap.Logger, []restclient.Option, error) {
	logger := zap.NewNop()
	if a.v.GetBool("debug") {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, nil, err
		}
	}

	var httpClient restclient.HttpClient = &http.Client{
		Timeout: a.v.GetDuration("timeout"),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	if a.v.GetBool("debug") {
		httpClient = debugclient.New(httpClient, logger)
	}
	httpClient = closingclient.New(httpClient)

	opts := []restclient.Option{
		restclient.CustomClient(httpClient),
		restclient.WithLogger(logger),
		restclient.WithStatusHandler(restclient.IsError, restclient.LogStatusHandler(logger)),
	}
	if secret := a.v.GetString("secret"); secret != "" {
		signer := &auth.Signer{Secret: []byte(secret), Subject: "books-cli"}
		opts = append(opts, signer.Option())
	}
	return logger, opts, nil
}

func (a *cliApp) bookClient() (*example.BookAPI, *restclient.Client, error) {
	_, opts, err := a.options()
	if err != nil {
		return nil, nil, err
	}
	return example.NewBookClient(a.v.GetString("base-url"), opts...)
}

func printJSON(value interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func (a *cliApp) listCmd() *cobra.Command {
	var filter example.BookFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, client, err := a.bookClient()
			if err != nil {
				return err
			}
			defer client.Close()
			books, err := api.ListBooks(cmd.Context(), &filter)
			if err != nil {
				return err
			}
			return printJSON(books)
		},
	}
	cmd.Flags().StringVar(&filter.Author, "author", "", "Filter by author")
	cmd.Flags().StringSliceVar(&filter.Tags, "tag", nil, "Filter by tag")
	cmd.Flags().IntVar(&filter.Page, "page", 0, "Page number")
	return cmd
}

func (a *cliApp) getManyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-many ID...",
		Short: "Fetch several books concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, client, err := a.bookClient()
			if err != nil {
				return err
			}
			defer client.Close()
			futures := make([]*restclient.Future[example.Book], len(args))
			for i, id := range args {
				if futures[i], err = api.GetBookAsync(cmd.Context(), id); err != nil {
					return err
				}
			}
			books := make([]example.Book, 0, len(args))
			for i, f := range futures {
				book, err := f.Get(cmd.Context())
				if err != nil {
					return fmt.Errorf("book %s: %w", args[i], err)
				}
				books = append(books, book)
			}
			return printJSON(books)
		},
	}
}

func (a *cliApp) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, client, err := a.bookClient()
			if err != nil {
				return err
			}
			defer client.Close()
			res, err := api.GetBook(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if res.IsError() {
				var errRes example.ErrorResponse
				if err := res.DecodeRaw(&restclient.JSONCodec{}, &errRes); err != nil {
					return fmt.Errorf("server returned %d: %s", res.Status(), res.Raw())
				}
				return fmt.Errorf("server returned %d: %s", res.Status(), errRes.Error)
			}
			return printJSON(res.Value())
		},
	}
}

func (a *cliApp) createCmd() *cobra.Command {
	var book example.Book
	var form bool
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a book",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, client, err := a.bookClient()
			if err != nil {
				return err
			}
			defer client.Close()
			var created example.Book
			if form {
				created, err = api.CreateBookForm(cmd.Context(), book.Title, book.Author, book.Year)
			} else {
				created, err = api.CreateBook(cmd.Context(), a.v.GetString("token"), book)
			}
			if err != nil {
				return err
			}
			return printJSON(created)
		},
	}
	cmd.Flags().StringVar(&book.Title, "title", "", "Title")
	cmd.Flags().StringVar(&book.Author, "author", "", "Author")
	cmd.Flags().IntVar(&book.Year, "year", 0, "Year of publication")
	cmd.Flags().StringSliceVar(&book.Tags, "tag", nil, "Tags")
	cmd.Flags().BoolVar(&form, "form", false, "Send as a urlencoded form")
	return cmd
}

func (a *cliApp) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete books",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, client, err := a.bookClient()
			if err != nil {
				return err
			}
			defer client.Close()
			for _, id := range args {
				if err := api.DeleteBook(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *cliApp) coverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cover ID FILE",
		Short: "Upload a cover image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, client, err := a.bookClient()
			if err != nil {
				return err
			}
			defer client.Close()
			info, err := api.UploadCover(cmd.Context(), args[0], restclient.FilePart(args[1]))
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}
}

func (a *cliApp) exportCmd() *cobra.Command {
	var author string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the catalog as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, opts, err := a.options()
			if err != nil {
				return err
			}
			api, client, err := example.NewExportClient(a.v.GetString("base-url"), opts...)
			if err != nil {
				return err
			}
			defer client.Close()
			rows, err := api.ExportBooks(cmd.Context(), author)
			if err != nil {
				return err
			}
			for _, row := range rows {
				fmt.Println(strings.Join(row, "\t"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "Filter by author")
	return cmd
}

func (a *cliApp) sinceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "since RFC3339",
		Short: "Ask the server how long ago the time was",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := time.Parse(time.RFC3339, args[0])
			if err != nil {
				return err
			}
			api, client, err := a.bookClient()
			if err != nil {
				return err
			}
			defer client.Close()
			d, err := api.Since(cmd.Context(), timestamppb.New(t))
			if err != nil {
				return err
			}
			fmt.Println(d.AsDuration())
			return nil
		},
	}
}

func (a *cliApp) openapiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "openapi",
		Short: "Print OpenAPI document of the book API",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.bookClient()
			if err != nil {
				return err
			}
			defer client.Close()
			doc, err := client.OpenAPI("Books", "1.0.0")
			if err != nil {
				return err
			}
			return printJSON(doc)
		},
	}
}
