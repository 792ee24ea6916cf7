package baskonto

// Hand-maintained from the BAS 2024 kontoplan (class/group level) plus the
// handful of accounts this module's own test vouchers reference directly.

var accountClasses = map[string]string{
	"1": "Tillgångar",
	"2": "Eget kapital och skulder",
	"3": "Rörelsens inkomster/intäkter",
	"4": "Utgifter/kostnader för varor, material och vissa köpta tjänster",
	"5": "Övriga externa rörelseutgifter/kostnader",
	"6": "Övriga externa rörelseutgifter/kostnader",
	"7": "Utgifter/kostnader för personal",
	"8": "Finansiella och andra inkomster/intäkter och utgifter/kostnader",
}

var accountNames = map[string]string{
	"1930": "Företagskonto",
	"2440": "Leverantörsskulder",
	"2614": "Utgående moms omvänd skattskyldighet, 25 %",
	"2617": "Utgående moms omvänd skattskyldighet import, 25 %",
	"2641": "Debiterad ingående moms",
	"2650": "Redovisningskonto för moms",
}
