// Package features implements the 95-element URL feature extractor and
// the structured risk-factor generator. The dictionaries below mirror
// the training-time feature extractor so the vector this package emits
// matches the distribution the ML model was trained on.
package features

var SuspiciousTLDs = map[string]bool{
	"tk": true, "ml": true, "ga": true, "cf": true, "gq": true, "pw": true,
	"top": true, "xyz": true, "club": true, "work": true, "click": true,
	"link": true, "surf": true, "buzz": true, "fun": true, "monster": true,
	"quest": true, "cam": true, "icu": true, "cc": true, "ws": true,
	"info": true, "biz": true, "su": true, "ru": true, "cn": true,
	"online": true, "site": true, "website": true, "space": true,
	"tech": true, "store": true, "stream": true, "download": true,
	"win": true, "review": true, "racing": true, "cricket": true,
	"science": true, "party": true, "gdn": true, "loan": true, "men": true,
	"country": true, "kim": true, "date": true, "faith": true,
	"accountant": true, "bid": true, "trade": true, "webcam": true,
}

var TrustedTLDs = map[string]bool{
	"edu": true, "gov": true, "mil": true, "int": true,
	"ac.uk": true, "gov.uk": true, "edu.au": true, "gov.au": true,
}

var BrandKeywords = map[string]bool{
	"paypal": true, "apple": true, "google": true, "microsoft": true,
	"amazon": true, "facebook": true, "netflix": true, "instagram": true,
	"whatsapp": true, "twitter": true, "linkedin": true, "ebay": true,
	"dropbox": true, "icloud": true, "outlook": true, "office365": true,
	"yahoo": true, "chase": true, "wellsfargo": true, "bankofamerica": true,
	"citibank": true, "capitalone": true, "steam": true, "spotify": true,
	"adobe": true, "coinbase": true, "binance": true, "metamask": true,
}

var PhishingKeywords = map[string]bool{
	"login": true, "signin": true, "sign-in": true, "logon": true,
	"password": true, "verify": true, "verification": true, "confirm": true,
	"update": true, "secure": true, "security": true, "account": true,
	"banking": true, "wallet": true, "suspend": true, "suspended": true,
	"urgent": true, "expire": true, "unlock": true, "restore": true,
	"recover": true, "validate": true, "authenticate": true, "webscr": true,
	"customer": true, "support": true, "helpdesk": true,
}

var MalwareKeywords = map[string]bool{
	"download": true, "free": true, "crack": true, "keygen": true,
	"patch": true, "serial": true, "warez": true, "torrent": true,
	"nulled": true, "hack": true, "cheat": true, "generator": true,
	"install": true, "setup": true, "update": true, "flash": true,
	"player": true, "codec": true, "driver": true,
}

var URLShorteners = map[string]bool{
	"bit.ly": true, "goo.gl": true, "tinyurl.com": true, "ow.ly": true,
	"t.co": true, "is.gd": true, "buff.ly": true, "adf.ly": true,
	"j.mp": true, "rb.gy": true, "cutt.ly": true, "tiny.cc": true,
}

var DangerousExtensions = []string{
	".exe", ".dll", ".bat", ".cmd", ".msi", ".scr", ".pif", ".vbs",
	".js", ".jar", ".apk", ".dmg", ".zip", ".rar", ".7z", ".iso",
}

var SuspiciousDomainKeywords = map[string]bool{
	"scam": true, "phish": true, "phishing": true, "fraud": true,
	"hack": true, "hacking": true, "malware": true, "virus": true,
	"trojan": true, "ransomware": true, "spyware": true, "exploit": true,
	"botnet": true, "keylogger": true, "stealer": true, "spam": true,
}

// CommonBigrams backs the randomness proxy: the fraction of a string's
// letter bigrams that appear here. Real words score high (0.4-0.8);
// random strings score low (<0.2).
var CommonBigrams = map[string]bool{
	"th": true, "he": true, "in": true, "er": true, "an": true, "re": true,
	"on": true, "at": true, "en": true, "nd": true, "ti": true, "es": true,
	"or": true, "te": true, "of": true, "ed": true, "is": true, "it": true,
	"al": true, "ar": true, "st": true, "to": true, "nt": true, "ng": true,
	"se": true, "ha": true, "as": true, "ou": true, "io": true, "le": true,
	"ve": true, "co": true, "me": true, "de": true, "hi": true, "ri": true,
	"ro": true, "ic": true, "ne": true, "ea": true, "ra": true, "ce": true,
	"li": true, "ch": true, "ll": true, "be": true, "ma": true, "si": true,
	"om": true, "ur": true,
	"go": true, "oo": true, "og": true, "gl": true, "ok": true, "bo": true,
	"fa": true, "ac": true, "eb": true, "am": true, "az": true, "ap": true,
	"pl": true, "pp": true, "tw": true, "et": true, "fl": true, "ix": true,
	"pa": true, "sc": true, "ca": true, "op": true, "ub": true, "dr": true,
	"sp": true, "ot": true, "if": true, "so": true, "ft": true, "ab": true,
	"ad": true, "ob": true, "do": true, "ag": true, "gi": true, "ig": true,
	"po": true, "pi": true, "cr": true, "ct": true, "di": true, "mi": true,
	"mo": true, "no": true, "ov": true, "sh": true, "sk": true, "sl": true,
	"sn": true, "sw": true, "ta": true, "tr": true, "tu": true, "up": true,
	"ut": true, "wa": true, "wi": true, "wo": true, "zo": true,
}

// IsURLShortener reports whether a registrable domain is a known
// shortener. Shared with internal/trust's w_struct scorer.
func IsURLShortener(registrable string) bool {
	return URLShorteners[registrable]
}
