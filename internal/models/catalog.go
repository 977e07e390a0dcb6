package models

import "strings"

type StreamingService struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogOptions is what the onboarding flow offers.
type CatalogOptions struct {
	StreamingServices []StreamingService `json:"streaming_services"`
	Genres            []Genre            `json:"genres"`
}

var StreamingServices = []StreamingService{
	{ID: "netflix", Name: "Netflix", Color: "#E50914"},
	{ID: "prime", Name: "Prime Video", Color: "#00A8E1"},
	{ID: "disney", Name: "Disney+", Color: "#113CCF"},
	{ID: "hulu", Name: "Hulu", Color: "#1CE783"},
	{ID: "max", Name: "Max", Color: "#002BE7"},
	{ID: "apple", Name: "Apple TV+", Color: "#A2AAAD"},
	{ID: "peacock", Name: "Peacock", Color: "#000000"},
	{ID: "paramount", Name: "Paramount+", Color: "#0064FF"},
}

var Genres = []Genre{
	{ID: "action", Name: "Action"},
	{ID: "comedy", Name: "Comedy"},
	{ID: "drama", Name: "Drama"},
	{ID: "horror", Name: "Horror"},
	{ID: "sci-fi", Name: "Sci-Fi"},
	{ID: "romance", Name: "Romance"},
	{ID: "thriller", Name: "Thriller"},
	{ID: "documentary", Name: "Documentary"},
	{ID: "animation", Name: "Animation"},
	{ID: "fantasy", Name: "Fantasy"},
}

func LookupStreamingService(id string) (StreamingService, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, s := range StreamingServices {
		if s.ID == id {
			return s, true
		}
	}
	return StreamingService{}, false
}

func LookupGenre(id string) (Genre, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, g := range Genres {
		if g.ID == id {
			return g, true
		}
	}
	return Genre{}, false
}

// ServiceName returns the display name for a service id, or the id itself.
func ServiceName(id string) string {
	if s, ok := LookupStreamingService(id); ok {
		return s.Name
	}
	return id
}
