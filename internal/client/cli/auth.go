package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dkazakov/taskdeck/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Register(ctx, email, password); err != nil {
		fmt.Println(err.Error())
		return err
	}

	fmt.Println("Registered! Use 'login' to sign in.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, email, password); err != nil {
		fmt.Println(err.Error())
		return err
	}

	a.userName = email
	fmt.Println("Success!")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		fmt.Println(err.Error())
		return err
	}
	a.userName = ""
	fmt.Println("Logged out")
	return nil
}
