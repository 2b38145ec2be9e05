// Package corpus ships a sample of English prose used to calibrate and
// self-test the cracker.
package corpus

import (
	"strings"
	"unicode"
)

// Prose is an original English passage of roughly three thousand letters.
const Prose = `
The harbor town woke slowly that morning, as it always did when the fog came in from the sea and settled over the roofs like a gray wool blanket. Fishermen walked down to the docks with their hands deep in their pockets, talking quietly about the weather and the price of bait, while the gulls circled above the boats and complained about everything. In the bakery on the corner the ovens had been burning since before dawn, and the smell of fresh bread drifted along the street and into the open windows of the houses.
Margaret had lived in the town for most of her life, and she knew every family by name and most of their secrets as well. She kept a small shop near the church where she sold paper, ink, candles, and the kind of useful things that nobody thinks about until the moment they are needed. People came to her for advice as often as they came for supplies, and she gave both generously, though she was careful never to promise more than she could deliver.
On this particular morning a stranger arrived on the early ferry. He was a tall man with a leather case under his arm and a coat that had clearly traveled a great distance. He asked the ferryman for directions to the old lighthouse, and when he was told that nobody had lived there for twenty years, he only nodded and said that he knew. The ferryman watched him climb the hill road and wondered aloud to anyone who would listen what business a man like that could have with an empty tower on the edge of the cliffs.
By noon the whole town was talking about him. Some said he was a government inspector sent to measure the harbor for a new breakwater. Others insisted that he was a writer looking for a quiet place to finish a novel, or a painter who wanted to capture the light over the water in the late afternoon. The children decided that he was a pirate searching for buried treasure, which was by far the most popular theory and the one they defended with the greatest enthusiasm.
Margaret did not join in the gossip. She remembered a letter that had come to the shop many years ago, addressed to the keeper of the lighthouse, and she remembered that nobody had ever come to collect it. She had kept it in a drawer behind the counter, meaning to return it to the post office, and then the years had passed and the letter had become part of the furniture of her life. That evening, after she closed the shop, she took the letter from the drawer and looked at the faded handwriting for a long time.
The next day she walked up the hill road herself. The wind had cleared the fog and the sea was bright and restless below the cliffs. When she reached the lighthouse she found the door open and the stranger sitting on the stone steps inside, reading from a notebook filled with columns of numbers. He looked up when her shadow fell across the page and smiled as though he had been expecting her. She held out the letter without a word, and he took it carefully, turning it over in his hands before he broke the seal.
Inside there was a single sheet of paper covered with rows of capital letters that made no sense at all. The stranger laughed softly and explained that his grandfather had been the last keeper of the light, and that the old man had loved puzzles more than anything else in the world. Every message he sent was written in a secret code, and every member of the family had been taught how to read it. The key, he said, was always a single word, and the word was always hidden somewhere in the letter itself.
They sat together on the steps for the rest of the afternoon, counting letters and comparing patterns, while the shadows grew long across the floor. Margaret discovered that she had a talent for the work, and by the time the sun touched the horizon they had found the word and read the message. It was a short note, full of affection and worry, asking the family to take care of the light and to remember that the sea gives back what it takes, if only one is patient enough to wait for it.
`

// Letters returns Prose upper-cased with everything except A-Z removed.
func Letters() string {
	return Normalize(Prose)
}

// Normalize upper-cases s and drops every rune outside A-Z.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if r < 'A' || r > 'Z' {
			return -1
		}
		return r
	}, s)
}

// Prefix returns the first n letters of the corpus, or all of them if n
// exceeds its length.
func Prefix(n int) string {
	l := Letters()
	if n > len(l) {
		n = len(l)
	}
	return l[:n]
}
