package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/emilianohg/sitecrew/internal/api"
	"github.com/emilianohg/sitecrew/internal/display"
	"github.com/emilianohg/sitecrew/internal/form"
	"github.com/emilianohg/sitecrew/internal/listing"
	"github.com/emilianohg/sitecrew/internal/models"
)

func siteForm(title string, s models.Site) *form.Form {
	status := string(s.Status)
	if status == "" {
		status = string(models.SiteOpen)
	}

	return form.New(title,
		form.Field{Key: "name", Label: "Name", Kind: form.Text, Value: s.Name, Required: true},
		form.Field{Key: "location", Label: "Location", Kind: form.Text, Value: s.Location, Required: true},
		form.Field{Key: "latitude", Label: "Latitude", Kind: form.Number, Value: form.FromDecimal(s.Latitude)},
		form.Field{Key: "longitude", Label: "Longitude", Kind: form.Number, Value: form.FromDecimal(s.Longitude)},
		form.Field{Key: "status", Label: "Status", Kind: form.Choice, Value: status, Required: true, Options: form.Options(models.SiteStatuses...)},
	)
}

func siteInput(f *form.Form) (api.SiteInput, error) {
	lat, err := form.OptDecimal(f.Get("latitude"))
	if err != nil {
		return api.SiteInput{}, err
	}
	lng, err := form.OptDecimal(f.Get("longitude"))
	if err != nil {
		return api.SiteInput{}, err
	}

	return api.SiteInput{
		Name:      strings.TrimSpace(f.Get("name")),
		Location:  strings.TrimSpace(f.Get("location")),
		Latitude:  lat,
		Longitude: lng,
		Status:    f.Get("status"),
	}, nil
}

func NewAdminSites(d Deps) Screen {
	c := d.Client

	return NewResourceScreen(Resource[models.Site]{
		Title: "Sites",
		Columns: []Column[models.Site]{
			{Title: "ID", Width: 5, Value: func(s models.Site) string { return fmt.Sprint(s.ID) }},
			{Title: "Name", Width: 22, Value: func(s models.Site) string { return s.Name }},
			{Title: "Location", Width: 22, Value: func(s models.Site) string { return s.Location }},
			{Title: "Latitude", Width: 10, Value: func(s models.Site) string { return display.Number(s.Latitude) }},
			{Title: "Longitude", Width: 10, Value: func(s models.Site) string { return display.Number(s.Longitude) }},
			{Title: "Status", Width: 8, Value: func(s models.Site) string { return string(s.Status) }},
		},
		List: listing.Config[models.Site]{
			PageSize: d.Config.PageSize,
			Haystack: func(s models.Site) string { return s.Name + " " + s.Location },
			Facets: []listing.Facet[models.Site]{
				{Key: "status", Label: "Status", Options: models.SiteStatuses, Match: listing.Exact(func(s models.Site) string { return string(s.Status) })},
			},
		},
		Load: func(ctx context.Context, _ map[string]string) ([]models.Site, error) {
			return c.Sites(ctx)
		},
		Actions: []Action[models.Site]{
			{
				Key: "a", Label: "Add", Global: true,
				Form: func(models.Site) *form.Form { return siteForm("New site", models.Site{}) },
				Run: func(ctx context.Context, _ models.Site, f *form.Form) error {
					in, err := siteInput(f)
					if err != nil {
						return err
					}
					return c.CreateSite(ctx, in)
				},
				Done: "Site created",
			},
			{
				Key: "e", Label: "Edit",
				Form: func(s models.Site) *form.Form { return siteForm("Edit site", s) },
				Run: func(ctx context.Context, s models.Site, f *form.Form) error {
					in, err := siteInput(f)
					if err != nil {
						return err
					}
					return c.UpdateSite(ctx, s.ID, in)
				},
				Done: "Site updated",
			},
			{
				Key: "d", Label: "Delete",
				Confirm: func(s models.Site) string { return fmt.Sprintf("Delete site '%s'?", s.Name) },
				Run: func(ctx context.Context, s models.Site, _ *form.Form) error {
					return c.DeleteSite(ctx, s.ID)
				},
				Done: "Site deleted",
			},
		},
	})
}
