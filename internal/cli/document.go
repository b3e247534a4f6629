package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a document",
	Long:  `Uploads a PDF, DOCX, Markdown or text file. Other files are stored with empty content.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question...]",
	Short: "Ask a question about a document",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAsk,
}

var explainCmd = &cobra.Command{
	Use:   "explain [doc-id] [concept...]",
	Short: "Explain concepts using a document",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runExplain,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(explainCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	doc, err := newClient().Upload(cmd.Context(), filepath.Base(args[0]), f)
	if err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as document %d\n", doc.Title, doc.ID)
	if doc.Summary != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "\nSummary:\n%s\n", *doc.Summary)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	docs, err := newClient().List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No documents found")
		return nil
	}

	for i := range docs {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d\t%s\t%s\n", docs[i].ID, docs[i].Title, docs[i].CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d documents\n", len(docs))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := newClient().Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted document %d\n", id)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	answer, err := newClient().Ask(cmd.Context(), id, strings.Join(args[1:], " "))
	if err != nil {
		return fmt.Errorf("failed to ask question: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

func runExplain(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	out, err := newClient().Explain(cmd.Context(), id, args[1:])
	if err != nil {
		return fmt.Errorf("failed to explain concepts: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid document id %q", s)
	}
	return id, nil
}
