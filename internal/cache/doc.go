// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

/*
Package cache provides a thread-safe, generic LRU cache with TTL support.

The recommendation engine keeps computed lists here keyed by
(user, neighbors, k). Entries expire lazily on Get and can be swept with
CleanupExpired; RemoveIf drops every entry of a user after that user's
ratings change.

# Usage Example

	c := cache.NewLRU[string, []int](1000, 5*time.Minute)
	c.Add("u:42", []int{7, 3, 9})
	if ids, ok := c.Get("u:42"); ok {
	    fmt.Println(ids)
	}
*/
package cache
