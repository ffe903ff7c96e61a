package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/uniformhub/app/services"
)

var adminCreateFlags struct {
	email, password, name string
}

var adminCreateCmd = &cobra.Command{
	Use:   "admin:create",
	Short: "Create an admin account, or promote an existing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		k, cleanup, err := boot(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := k.Services.Roles.Seed(ctx); err != nil {
			return err
		}
		f := adminCreateFlags
		u, created, err := k.Services.Users.CreateAdmin(ctx, f.name, f.email, f.password)
		if err != nil {
			var ve *services.ValidationError
			if errors.As(err, &ve) {
				return fmt.Errorf("invalid input: %s", joinFields(ve.Fields))
			}
			return err
		}
		verb := "Promoted"
		if created {
			verb = "Created"
		}
		fmt.Printf("%s admin %s (id %d)\n", verb, u.Email, u.ID)
		return nil
	},
}

var rolesSeedCmd = &cobra.Command{
	Use:   "roles:seed",
	Short: "Create the system roles if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		k, cleanup, err := boot(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := k.Services.Roles.Seed(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d role(s) created.\n", n)
		return nil
	},
}

var schoolsImportFlags struct {
	country string
	county  int64
}

var schoolsImportCmd = &cobra.Command{
	Use:   "schools:import",
	Short: "Import counties, localities and schools from OpenStreetMap",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		k, cleanup, err := boot(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := k.Services.Geo.Import(ctx, schoolsImportFlags.country, schoolsImportFlags.county)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d counties, %d localities, %d schools.\n", res.Counties, res.Localities, res.Schools)
		return nil
	},
}

func joinFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, "; ")
}

func init() {
	fl := adminCreateCmd.Flags()
	fl.StringVar(&adminCreateFlags.email, "email", "", "Admin email (required)")
	fl.StringVar(&adminCreateFlags.password, "password", "", "Password, at least 8 characters (required)")
	fl.StringVar(&adminCreateFlags.name, "name", "Administrator", "Display name")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	schoolsImportCmd.Flags().StringVar(&schoolsImportFlags.country, "country", "GB", "ISO 3166-1 alpha-2 country code")
	schoolsImportCmd.Flags().Int64Var(&schoolsImportFlags.county, "county", 0, "Only import this county's OSM relation id")
}
