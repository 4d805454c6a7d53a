// Xrecommender - Explainable Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/xrecommender

package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix keys for the different record types
const (
	prefixUser        = "user:"
	prefixUserEmb     = "user_emb:"
	prefixUserAcc     = "user_acc:"
	prefixUsername    = "username:"
	prefixBook        = "book:"
	prefixBookEmb     = "book_emb:"
	prefixKeyword     = "keyword:"
	prefixKeywordWord = "keyword_word:"
	prefixRating      = "rating:"
)

// Sequence keys used for ID assignment
const (
	seqUsers    = "seq:users"
	seqBooks    = "seq:books"
	seqKeywords = "seq:keywords"
)

const idWidth = 20

func padID(id int) string {
	return fmt.Sprintf("%0*d", idWidth, id)
}

func userKey(id int) []byte    { return []byte(prefixUser + padID(id)) }
func userEmbKey(id int) []byte { return []byte(prefixUserEmb + padID(id)) }
func userAccKey(id int) []byte { return []byte(prefixUserAcc + padID(id)) }
func bookKey(id int) []byte    { return []byte(prefixBook + padID(id)) }
func bookEmbKey(id int) []byte { return []byte(prefixBookEmb + padID(id)) }
func keywordKey(id int) []byte { return []byte(prefixKeyword + padID(id)) }

func usernameKey(name string) []byte {
	return []byte(prefixUsername + name)
}

func keywordWordKey(word string) []byte {
	return []byte(prefixKeywordWord + word)
}

func ratingKey(userID, bookID int) []byte {
	return []byte(prefixRating + padID(userID) + ":" + padID(bookID))
}

// ratingPrefix covers every rating of one user.
func ratingPrefix(userID int) []byte {
	return []byte(prefixRating + padID(userID) + ":")
}

// idFromKey parses the trailing zero-padded ID of a key with the given prefix.
func idFromKey(key []byte, prefix string) (int, error) {
	s := strings.TrimPrefix(string(key), prefix)
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("malformed key %q: %w", key, err)
	}
	return id, nil
}
