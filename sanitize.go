package admins

import "strings"

// AdministratorInput holds the raw form values for add and update
type AdministratorInput struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Role     string `form:"role" json:"role"`
}

// Sanitize trims every field and normalizes the email. Both the add and
// update flows go through here so stored values are consistent. Values
// are not HTML escaped, the view engine escapes output.
func (in AdministratorInput) Sanitize() AdministratorInput {
	return AdministratorInput{
		Username: strings.TrimSpace(in.Username),
		Email:    NormalizeEmail(in.Email),
		Password: strings.TrimSpace(in.Password),
		Role:     strings.TrimSpace(in.Role),
	}
}

// NormalizeEmail lower cases the address and folds provider aliases
// into one canonical mailbox:
//   - gmail drops sub-addresses and single dots, googlemail becomes gmail
//   - icloud and outlook family domains drop "+" sub-addresses
//   - yahoo family domains drop the last "-" sub-address
//   - yandex domains become yandex.ru
//
// An address that would end up with an empty mailbox is only lower cased.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return email
	}

	local, domain := email[:at], email[at+1:]

	switch {
	case domain == "gmail.com" || domain == "googlemail.com":
		local = removeGmailDots(cutSubaddress(local, "+"))
		domain = "gmail.com"
	case inDomains(domain, icloudDomains), inDomains(domain, outlookDomains):
		local = cutSubaddress(local, "+")
	case inDomains(domain, yahooDomains):
		if i := strings.LastIndex(local, "-"); i >= 0 {
			local = local[:i]
		}
	case inDomains(domain, yandexDomains):
		domain = "yandex.ru"
	}

	if local == "" {
		return email
	}

	return local + "@" + domain
}

func cutSubaddress(local, sep string) string {
	if i := strings.Index(local, sep); i >= 0 {
		return local[:i]
	}
	return local
}

// removeGmailDots drops single dots, runs of dots are kept as is
func removeGmailDots(local string) string {
	var b strings.Builder
	for i := 0; i < len(local); {
		if local[i] != '.' {
			b.WriteByte(local[i])
			i++
			continue
		}
		j := i
		for j < len(local) && local[j] == '.' {
			j++
		}
		if j-i > 1 {
			b.WriteString(local[i:j])
		}
		i = j
	}
	return b.String()
}

func inDomains(domain string, domains map[string]struct{}) bool {
	_, ok := domains[domain]
	return ok
}

func domainSet(domains ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[d] = struct{}{}
	}
	return set
}

var icloudDomains = domainSet("icloud.com", "me.com")

var outlookDomains = domainSet(
	"hotmail.at", "hotmail.be", "hotmail.ca", "hotmail.cl", "hotmail.co.il",
	"hotmail.co.nz", "hotmail.co.th", "hotmail.co.uk", "hotmail.com",
	"hotmail.com.ar", "hotmail.com.au", "hotmail.com.br", "hotmail.com.gr",
	"hotmail.com.mx", "hotmail.com.pe", "hotmail.com.tr", "hotmail.com.vn",
	"hotmail.cz", "hotmail.de", "hotmail.dk", "hotmail.es", "hotmail.fr",
	"hotmail.hu", "hotmail.id", "hotmail.ie", "hotmail.in", "hotmail.it",
	"hotmail.jp", "hotmail.kr", "hotmail.lv", "hotmail.my", "hotmail.ph",
	"hotmail.pt", "hotmail.sa", "hotmail.sg", "hotmail.sk",
	"live.be", "live.co.uk", "live.com", "live.com.ar", "live.com.mx",
	"live.de", "live.es", "live.eu", "live.fr", "live.it", "live.nl",
	"msn.com",
	"outlook.at", "outlook.be", "outlook.cl", "outlook.co.il", "outlook.co.nz",
	"outlook.co.th", "outlook.com", "outlook.com.ar", "outlook.com.au",
	"outlook.com.br", "outlook.com.gr", "outlook.com.pe", "outlook.com.tr",
	"outlook.com.vn", "outlook.cz", "outlook.de", "outlook.dk", "outlook.es",
	"outlook.fr", "outlook.hu", "outlook.id", "outlook.ie", "outlook.in",
	"outlook.it", "outlook.jp", "outlook.kr", "outlook.lv", "outlook.my",
	"outlook.ph", "outlook.pt", "outlook.sa", "outlook.sg", "outlook.sk",
	"passport.com",
)

var yahooDomains = domainSet(
	"rocketmail.com", "yahoo.ca", "yahoo.co.uk", "yahoo.com", "yahoo.de",
	"yahoo.fr", "yahoo.in", "yahoo.it", "ymail.com",
)

var yandexDomains = domainSet("yandex.ru", "yandex.ua", "yandex.kz", "yandex.com", "yandex.by", "ya.ru")
