package catalog

//nolint:gochecknoglobals // static reference data
var (
	// ParseAnchors are the club codes recognised when reading screenshot text.
	ParseAnchors = []Club{
		"ARS", "AVL", "BOU", "BRE", "BHA", "CHE", "CRY", "EVE", "FUL", "IPS",
		"LEI", "LIV", "MCI", "MUN", "NEW", "NFO", "SOU", "TOT", "WHU", "WOL",
		"BUR",
	}

	// extraClubs appear in player metadata but are not screenshot anchors.
	extraClubs = []Club{"BAY"}

	knownClubs = func() map[Club]struct{} {
		m := make(map[Club]struct{}, len(ParseAnchors)+len(extraClubs))
		for _, c := range ParseAnchors {
			m[c] = struct{}{}
		}
		for _, c := range extraClubs {
			m[c] = struct{}{}
		}
		return m
	}()

	// FallbackNames is returned by screenshot extraction when too few names
	// could be read. The same list is scanned for directly in every line.
	FallbackNames = []string{
		"Henderson", "A.Murphy", "Bogarde", "Gusto", "Ballard",
		"Moorhouse", "Ødegaard", "Nkunku", "Martinelli", "Bamford",
		"Højlund", "Vicario", "Gvardiol", "Luis Diaz", "Haaland",
	}

	defaultPlayers = []Player{
		{ID: 1, Name: "Alisson", Club: "LIV", Position: Goalkeeper, Price: 55},
		{ID: 2, Name: "Ederson", Club: "MCI", Position: Goalkeeper, Price: 50},
		{ID: 3, Name: "Ramsdale", Club: "ARS", Position: Goalkeeper, Price: 45},
		{ID: 4, Name: "Pope", Club: "NEW", Position: Goalkeeper, Price: 50},
		{ID: 5, Name: "Pickford", Club: "EVE", Position: Goalkeeper, Price: 45},
		{ID: 60, Name: "Henderson", Club: "CHE", Position: Goalkeeper, Price: 40},
		{ID: 61, Name: "Vicario", Club: "BUR", Position: Goalkeeper, Price: 45},

		{ID: 6, Name: "Virgil van Dijk", Club: "LIV", Position: Defender, Price: 65},
		{ID: 7, Name: "Ruben Dias", Club: "MCI", Position: Defender, Price: 60},
		{ID: 8, Name: "William Saliba", Club: "ARS", Position: Defender, Price: 55},
		{ID: 9, Name: "Kieran Trippier", Club: "NEW", Position: Defender, Price: 55},
		{ID: 10, Name: "Reece James", Club: "CHE", Position: Defender, Price: 60},
		{ID: 11, Name: "Andrew Robertson", Club: "LIV", Position: Defender, Price: 60},
		{ID: 12, Name: "Kyle Walker", Club: "MCI", Position: Defender, Price: 55},
		{ID: 13, Name: "Gabriel", Club: "ARS", Position: Defender, Price: 50},
		{ID: 14, Name: "Sven Botman", Club: "NEW", Position: Defender, Price: 45},
		{ID: 15, Name: "Ben Chilwell", Club: "CHE", Position: Defender, Price: 50},
		{ID: 62, Name: "A.Murphy", Club: "AVL", Position: Defender, Price: 45},
		{ID: 63, Name: "Bogarde", Club: "NEW", Position: Defender, Price: 45},
		{ID: 64, Name: "Gusto", Club: "CRY", Position: Defender, Price: 50},
		{ID: 65, Name: "Ballard", Club: "WHU", Position: Defender, Price: 45},
		{ID: 66, Name: "Gvardiol", Club: "WOL", Position: Defender, Price: 55},

		{ID: 16, Name: "Mohamed Salah", Club: "LIV", Position: Midfielder, Price: 125},
		{ID: 17, Name: "Kevin De Bruyne", Club: "MCI", Position: Midfielder, Price: 105},
		{ID: 18, Name: "Bukayo Saka", Club: "ARS", Position: Midfielder, Price: 90},
		{ID: 19, Name: "Bruno Fernandes", Club: "MUN", Position: Midfielder, Price: 85},
		{ID: 20, Name: "Son Heung-min", Club: "TOT", Position: Midfielder, Price: 95},
		{ID: 21, Name: "Luis Diaz", Club: "LIV", Position: Midfielder, Price: 80},
		{ID: 22, Name: "Phil Foden", Club: "MCI", Position: Midfielder, Price: 90},
		{ID: 23, Name: "Martin Odegaard", Club: "ARS", Position: Midfielder, Price: 85},
		{ID: 24, Name: "Marcus Rashford", Club: "MUN", Position: Midfielder, Price: 85},
		{ID: 25, Name: "James Maddison", Club: "TOT", Position: Midfielder, Price: 80},
		{ID: 67, Name: "Moorhouse", Club: "ARS", Position: Midfielder, Price: 50},
		{ID: 68, Name: "Ødegaard", Club: "MUN", Position: Midfielder, Price: 85},
		{ID: 69, Name: "Nkunku", Club: "CRY", Position: Midfielder, Price: 75},
		{ID: 70, Name: "Martinelli", Club: "MUN", Position: Midfielder, Price: 65},

		{ID: 26, Name: "Erling Haaland", Club: "MCI", Position: Forward, Price: 140},
		{ID: 27, Name: "Harry Kane", Club: "BAY", Position: Forward, Price: 110},
		{ID: 28, Name: "Alexander Isak", Club: "NEW", Position: Forward, Price: 85},
		{ID: 29, Name: "Darwin Nunez", Club: "LIV", Position: Forward, Price: 90},
		{ID: 30, Name: "Ivan Toney", Club: "BRE", Position: Forward, Price: 75},
		{ID: 31, Name: "Ollie Watkins", Club: "AVL", Position: Forward, Price: 90},
		{ID: 32, Name: "Dominic Solanke", Club: "BOU", Position: Forward, Price: 75},
		{ID: 71, Name: "Bamford", Club: "EVE", Position: Forward, Price: 65},
		{ID: 72, Name: "Højlund", Club: "ARS", Position: Forward, Price: 80},
		{ID: 73, Name: "Haaland", Club: "WOL", Position: Forward, Price: 140},
	}
)

// KnownClub reports whether c is a recognised club code.
func KnownClub(c Club) bool {
	_, ok := knownClubs[c]
	return ok
}
