package translit

// Kannada romanization tables.
var kannadaScript = &script{
	vowels: map[rune]string{
		'ಅ': "a",
		'ಆ': "aa",
		'ಇ': "i",
		'ಈ': "ee",
		'ಉ': "u",
		'ಊ': "oo",
		'ಋ': "ru",
		'ೠ': "ruu",
		'ಎ': "e",
		'ಏ': "ae",
		'ಐ': "ai",
		'ಒ': "o",
		'ಓ': "oa",
		'ಔ': "au",
	},
	consonants: map[rune]string{
		'ಕ': "ka", 'ಖ': "kha", 'ಗ': "ga", 'ಘ': "gha", 'ಙ': "nga",
		'ಚ': "cha", 'ಛ': "chha", 'ಜ': "ja", 'ಝ': "jha", 'ಞ': "nya",
		'ಟ': "ta", 'ಠ': "tha", 'ಡ': "da", 'ಢ': "dha", 'ಣ': "na",
		'ತ': "tha", 'ಥ': "thha", 'ದ': "dha", 'ಧ': "dhha", 'ನ': "na",
		'ಪ': "pa", 'ಫ': "pha", 'ಬ': "ba", 'ಭ': "bha", 'ಮ': "ma",
		'ಯ': "ya", 'ರ': "ra", 'ಲ': "la", 'ವ': "va",
		'ಶ': "sha", 'ಷ': "shha", 'ಸ': "sa", 'ಹ': "ha",
		'ಳ': "la", 'ೞ': "zha", 'ಱ': "rra",
	},
	vowelSigns: map[rune]string{
		'ಾ': "aa",
		'ಿ': "i",
		'ೀ': "ee",
		'ು': "u",
		'ೂ': "oo",
		'ೃ': "ru",
		'ೄ': "ruu",
		'ೆ': "e",
		'ೇ': "ae",
		'ೈ': "ai",
		'ೊ': "o",
		'ೋ': "oa",
		'ೌ': "au",
		'್': "", // virama suppresses the inherent vowel
	},
	special: map[rune]string{
		'ಂ': "m", // anusvara
		'ಃ': "h", // visarga
		'಼': "",  // nukta
		'ೱ': "va",
		'ೲ': "va",
	},
	virama: '್',
}
