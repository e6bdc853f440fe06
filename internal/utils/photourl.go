package utils

import "strings"

// PhotoPlaceholder is served in place of a missing photo.
const PhotoPlaceholder = "data:image/svg+xml,%3Csvg xmlns=%22http://www.w3.org/2000/svg%22 width=%22400%22 height=%22300%22%3E%3Crect fill=%22%23E4EFE7%22 width=%22400%22 height=%22300%22/%3E%3Ctext x=%2250%25%22 y=%2250%25%22 font-size=%2248%22 text-anchor=%22middle%22 dy=%22.3em%22%3E%F0%9F%8F%A0%3C/text%3E%3C/svg%3E"

// ResolvePhotoURL turns a stored photo path into a browser-usable URL
// below base (e.g. "" or "/rentconnect" or "https://cdn.example.com").
//
//   - empty or blank input yields PhotoPlaceholder
//   - everything from the first ':' is dropped from relative paths
//   - absolute http(s) URLs are returned as is, minus a trailing ":<digits>"
//     after the last '/'
//   - a leading '/' is ignored
//   - paths already under base are returned rooted
//   - "uploads/..." paths are placed under base
//   - bare file names are placed under base/uploads/properties/
func ResolvePhotoURL(path, base string) string {
    clean := strings.TrimSpace(path)
    if clean == "" {
        return PhotoPlaceholder
    }

    lower := strings.ToLower(clean)
    if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
        return trimNumericSuffix(clean)
    }
    if i := strings.IndexByte(clean, ':'); i >= 0 {
        clean = clean[:i]
    }

    clean = strings.TrimPrefix(clean, "/")
    if clean == "" {
        return PhotoPlaceholder
    }

    root := strings.TrimRight(base, "/")
    if trimmed := strings.TrimPrefix(root, "/"); trimmed != "" && !strings.Contains(root, "://") &&
        strings.HasPrefix(clean, trimmed+"/") {
        return "/" + clean
    }
    if strings.HasPrefix(clean, "uploads/") {
        return root + "/" + clean
    }
    return root + "/uploads/properties/" + clean
}

// trimNumericSuffix drops ":<digits>" at the end of the last path segment.
// Ports live before the first '/' after the scheme and are left alone.
func trimNumericSuffix(u string) string {
    authority := strings.Index(u, "://") + 3
    if strings.IndexByte(u[authority:], '/') < 0 {
        return u
    }
    slash := strings.LastIndexByte(u, '/')
    colon := strings.LastIndexByte(u, ':')
    if colon <= slash || colon == len(u)-1 {
        return u
    }
    if strings.Trim(u[colon+1:], "0123456789") != "" {
        return u
    }
    return u[:colon]
}

// ResolvePhotoURLs maps ResolvePhotoURL over paths.
func ResolvePhotoURLs(paths []string, base string) []string {
    out := make([]string, len(paths))
    for i, p := range paths {
        out[i] = ResolvePhotoURL(p, base)
    }
    return out
}
