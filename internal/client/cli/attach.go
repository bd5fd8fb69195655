package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkazakov/taskdeck/internal/filex"
	"github.com/dkazakov/taskdeck/internal/netx"
)

// AttachFile reads a local file and uploads it as a task attachment via the
// presigned URL the server hands back.
func (a *App) AttachFile(ctx context.Context) error {
	taskID, err := GetSimpleText(a.reader, "Enter task id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	path, err := GetSimpleText(a.reader, "Enter file path", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	attachment, err := a.client.AttachFile(ctx, taskID, filepath.Base(path))
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	if err := netx.UploadToPresignedURL(attachment.URL, data); err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Uploaded %s as attachment %s\n", attachment.FileName, attachment.ID)
	return nil
}

// DownloadAttachments fetches all of a task's attachments into ./downloads.
func (a *App) DownloadAttachments(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: download <task id>")
		return nil
	}

	list, err := a.client.ListAttachments(ctx, args[0])
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	if len(list) == 0 {
		fmt.Println("No attachments")
		return nil
	}

	dir, err := filex.EnsureSubDir("downloads")
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	for _, attachment := range list {
		data, err := netx.DownloadFromPresignedURL(attachment.URL)
		if err != nil {
			fmt.Println(err.Error())
			return err
		}

		dest := filepath.Join(dir, attachment.FileName)
		if err := os.WriteFile(dest, data, 0o660); err != nil {
			fmt.Println(err.Error())
			return err
		}
		fmt.Printf("Saved %s\n", dest)
	}
	return nil
}
