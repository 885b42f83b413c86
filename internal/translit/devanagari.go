package translit

// Devanagari (Hindi) romanization tables.
var devanagariScript = &script{
	vowels: map[rune]string{
		'अ': "a",
		'आ': "aa",
		'इ': "i",
		'ई': "ee",
		'उ': "u",
		'ऊ': "oo",
		'ऋ': "ri",
		'ॠ': "ree",
		'ऌ': "lri",
		'ॡ': "lree",
		'ए': "e",
		'ऐ': "ai",
		'ओ': "o",
		'औ': "au",
	},
	consonants: map[rune]string{
		'क': "ka", 'ख': "kha", 'ग': "ga", 'घ': "gha", 'ङ': "nga",
		'च': "cha", 'छ': "chha", 'ज': "ja", 'झ': "jha", 'ञ': "nya",
		'ट': "ta", 'ठ': "tha", 'ड': "da", 'ढ': "dha", 'ण': "na",
		'त': "tha", 'थ': "thha", 'द': "dha", 'ध': "dhha", 'न': "na",
		'प': "pa", 'फ': "pha", 'ब': "ba", 'भ': "bha", 'म': "ma",
		'य': "ya", 'र': "ra", 'ल': "la", 'व': "va",
		'श': "sha", 'ष': "shha", 'स': "sa", 'ह': "ha",
		'क़': "qa", 'ख़': "kha", 'ग़': "gha", 'ज़': "za",
		'ड़': "da", 'ढ़': "dha", 'फ़': "fa", 'य़': "ya",
		'ऱ': "ra", 'ळ': "la", 'ऴ': "zha",
	},
	vowelSigns: map[rune]string{
		'ा': "aa",
		'ि': "i",
		'ी': "ee",
		'ु': "u",
		'ू': "oo",
		'ृ': "ri",
		'ॄ': "ree",
		'ॢ': "lri",
		'ॣ': "lree",
		'े': "e",
		'ै': "ai",
		'ो': "o",
		'ौ': "au",
		'्': "", // virama suppresses the inherent vowel
	},
	special: map[rune]string{
		'ं': "m", // anusvara
		'ः': "h", // visarga
		'ँ': "n", // chandrabindu
		'़': "",  // nukta
		'ॐ': "om",
		'।': ".",
		'॥': "..",
	},
	virama: '्',
}
