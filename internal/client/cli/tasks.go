package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

func (a *App) Add(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	description, err := GetMultiline(a.reader, "Enter description (optional)", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	task, err := a.client.CreateTask(ctx, title, description)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Created task %s [%s]\n", task.ID, task.Status)
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	page := 1
	if len(args) > 0 {
		if p, err := strconv.Atoi(args[0]); err == nil {
			page = p
		}
	}

	result, err := a.client.ListTasks(ctx, page, 10, "", "")
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	if len(result.Data) == 0 {
		fmt.Println("No tasks")
		return nil
	}

	for _, task := range result.Data {
		fmt.Printf("%s  [%-11s]  %s\n", task.ID, task.Status, task.Title)
	}
	fmt.Printf("Page %d of %d (%d total)\n", result.Pagination.Page, result.Pagination.TotalPages, result.Pagination.Total)
	return nil
}

func (a *App) Show(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter task id", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	task, err := a.client.GetTask(ctx, id)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("ID:      %s\n", task.ID)
	fmt.Printf("Title:   %s\n", task.Title)
	fmt.Printf("Status:  %s\n", task.Status)
	if task.Description != nil {
		fmt.Printf("Description:\n%s\n", *task.Description)
	}
	return nil
}

func (a *App) Toggle(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: toggle <id>")
		return nil
	}

	task, err := a.client.ToggleTask(ctx, args[0])
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Printf("Task %s is now %s\n", task.ID, task.Status)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: delete <id>")
		return nil
	}

	if err := a.client.DeleteTask(ctx, args[0]); err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Println("Deleted")
	return nil
}
