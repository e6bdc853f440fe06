package utils

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestResolvePhotoURL(t *testing.T) {
    cases := []struct {
        name, path, base, want string
    }{
        {"empty", "", "/rc", PhotoPlaceholder},
        {"blank", "   ", "/rc", PhotoPlaceholder},
        {"uploads path", "uploads/properties/a.jpg", "/rc", "/rc/uploads/properties/a.jpg"},
        {"leading slash", "/uploads/properties/a.jpg", "/rc", "/rc/uploads/properties/a.jpg"},
        {"bare name", "a.jpg", "/rc", "/rc/uploads/properties/a.jpg"},
        {"trailing junk after colon", "uploads/properties/a.jpg:1", "/rc", "/rc/uploads/properties/a.jpg"},
        {"already under base", "/rc/uploads/properties/a.jpg", "/rc", "/rc/uploads/properties/a.jpg"},
        {"absolute http", "https://cdn.example.com/a.jpg", "/rc", "https://cdn.example.com/a.jpg"},
        {"absolute http with junk", "http://cdn.example.com/a.jpg:2", "", "http://cdn.example.com/a.jpg"},
        {"absolute with port", "https://cdn.example.com:8443/uploads/properties/a.jpg", "/rc",
            "https://cdn.example.com:8443/uploads/properties/a.jpg"},
        {"absolute with port and junk", "http://localhost:8080/uploads/a.jpg:3", "",
            "http://localhost:8080/uploads/a.jpg"},
        {"absolute host with port only", "http://localhost:8080", "", "http://localhost:8080"},
        {"empty base", "uploads/profiles/p.png", "", "/uploads/profiles/p.png"},
        {"absolute base", "b.png", "https://cdn.example.com/", "https://cdn.example.com/uploads/properties/b.png"},
        {"only colon", ":x", "/rc", PhotoPlaceholder},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, ResolvePhotoURL(tc.path, tc.base))
        })
    }
}

func TestResolvePhotoURLs_KeepsOrder(t *testing.T) {
    got := ResolvePhotoURLs([]string{"a.jpg", "uploads/properties/b.jpg"}, "")
    assert.Equal(t, []string{"/uploads/properties/a.jpg", "/uploads/properties/b.jpg"}, got)
}
