package aggregate

import "strings"

// BibleBooks is the 66-book Protestant canon in canonical order.
var BibleBooks = []string{
	// Old Testament
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy",
	"Joshua", "Judges", "Ruth", "1 Samuel", "2 Samuel",
	"1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles", "Ezra",
	"Nehemiah", "Esther", "Job", "Psalms", "Proverbs",
	"Ecclesiastes", "Song of Solomon", "Isaiah", "Jeremiah", "Lamentations",
	"Ezekiel", "Daniel", "Hosea", "Joel", "Amos",
	"Obadiah", "Jonah", "Micah", "Nahum", "Habakkuk",
	"Zephaniah", "Haggai", "Zechariah", "Malachi",
	// New Testament
	"Matthew", "Mark", "Luke", "John", "Acts",
	"Romans", "1 Corinthians", "2 Corinthians", "Galatians", "Ephesians",
	"Philippians", "Colossians", "1 Thessalonians", "2 Thessalonians", "1 Timothy",
	"2 Timothy", "Titus", "Philemon", "Hebrews", "James",
	"1 Peter", "2 Peter", "1 John", "2 John", "3 John",
	"Jude", "Revelation",
}

// bookIndex returns the canonical position of book, matched
// case-insensitively, or -1.
func bookIndex(book string) int {
	for i, b := range BibleBooks {
		if strings.EqualFold(b, strings.TrimSpace(book)) {
			return i
		}
	}
	return -1
}

// CanonicalBook returns the canonical spelling of book, or "" when it is
// not one of the 66 books.
func CanonicalBook(book string) string {
	if i := bookIndex(book); i >= 0 {
		return BibleBooks[i]
	}
	return ""
}
