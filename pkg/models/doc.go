// Package models keeps each user's harvested model catalog.
//
// A catalog is fetched at most once per user and then served from memory
// until it is invalidated. Fetches are serialised system-wide: the browser
// session is a single shared page, so while one fetch drives it every other
// caller is told Busy instead of being queued.
//
// Basic usage:
//
//	cache := models.NewCache(pipeline, models.Options{Messenger: m})
//	defer cache.Close()
//
//	res := cache.EnsureLoaded(ctx, userID, chatID)
//	switch res.Status {
//	case models.StatusLoaded, models.StatusAlreadyLoaded:
//		// render res.Catalog
//	case models.StatusBusy:
//		// ask the user to retry later
//	case models.StatusFailed:
//		// show res.Reason
//	}
package models
