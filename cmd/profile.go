package main

import (
	"context"
	"fmt"

	"github.com/ferntree/marquee/internal/models"
	"github.com/ferntree/marquee/internal/services"
	"github.com/ferntree/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProfileShow prints the profile of the signed-in user.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.rehydrate(ctx); err != nil {
		return err
	}

	identity, ok := r.store.Current()
	if !ok {
		return shared.ErrNotAuthenticated
	}

	profile, err := r.catalog.UserProfile(ctx, identity.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, true)
	}

	r.writePlain("Name:       %s\n", profile.Name)
	r.writePlain("Email:      %s\n", identity.Email)
	if profile.DOB != "" {
		r.writePlain("DOB:        %s\n", profile.DOB)
	}
	if profile.Address != "" {
		r.writePlain("Address:    %s\n", profile.Address)
	}
	if len(profile.Categories) > 0 {
		r.writePlain("Categories: %v\n", profile.Categories)
	}
	return nil
}

// ProfileUpdate overlays the given flags on the current profile and submits
// the result. The stored session keeps its token; only the identity fields
// change.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.rehydrate(ctx); err != nil {
		return err
	}

	identity, ok := r.store.Current()
	if !ok {
		return shared.ErrNotAuthenticated
	}

	profile, err := r.catalog.UserProfile(ctx, identity.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch current profile: %w", err)
	}

	patch := models.IdentityPatch{}
	if name := cmd.String("name"); name != "" {
		profile.Name = name
		patch.Name = &name
	}
	if address := cmd.String("address"); address != "" {
		profile.Address = address
		patch.Address = &address
	}
	if dob := cmd.String("dob"); dob != "" {
		profile.DOB = dob
		patch.DOB = &dob
	}
	if image := cmd.String("image"); image != "" {
		profile.Image = image
		patch.Image = &image
	}
	if categories := cmd.StringSlice("category"); len(categories) > 0 {
		profile.Categories = categories
		patch.Categories = &categories
	}

	if patch.IsZero() {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}

	if err := r.catalog.UpdateProfile(ctx, identity.ID, services.Profile{
		Name:       profile.Name,
		Address:    profile.Address,
		Image:      profile.Image,
		DOB:        profile.DOB,
		Categories: profile.Categories,
	}); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if err := r.store.Patch(patch); err != nil {
		r.logger.Warn("profile patch skipped", "error", err)
	}

	return r.writePlain("✓ Profile updated\n")
}
