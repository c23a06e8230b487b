package logo

// knownDomains maps frequently viewed tickers to the company's web domain.
var knownDomains = map[string]string{
	"AAPL":  "apple.com",
	"MSFT":  "microsoft.com",
	"GOOG":  "abc.xyz",
	"GOOGL": "abc.xyz",
	"AMZN":  "amazon.com",
	"META":  "meta.com",
	"NVDA":  "nvidia.com",
	"TSLA":  "tesla.com",
	"NFLX":  "netflix.com",
	"AMD":   "amd.com",
	"INTC":  "intel.com",
	"AVGO":  "broadcom.com",
	"ORCL":  "oracle.com",
	"CRM":   "salesforce.com",
	"ADBE":  "adobe.com",
	"IBM":   "ibm.com",
	"CSCO":  "cisco.com",
	"QCOM":  "qualcomm.com",
	"TSM":   "tsmc.com",
	"UBER":  "uber.com",
	"SHOP":  "shopify.com",
	"PLTR":  "palantir.com",
	"SNOW":  "snowflake.com",
	"PYPL":  "paypal.com",
	"V":     "visa.com",
	"MA":    "mastercard.com",
	"JPM":   "jpmorganchase.com",
	"BAC":   "bankofamerica.com",
	"GS":    "goldmansachs.com",
	"MS":    "morganstanley.com",
	"WMT":   "walmart.com",
	"COST":  "costco.com",
	"TGT":   "target.com",
	"HD":    "homedepot.com",
	"NKE":   "nike.com",
	"SBUX":  "starbucks.com",
	"MCD":   "mcdonalds.com",
	"KO":    "coca-colacompany.com",
	"PEP":   "pepsico.com",
	"DIS":   "disney.com",
	"JNJ":   "jnj.com",
	"PFE":   "pfizer.com",
	"LLY":   "lilly.com",
	"UNH":   "unitedhealthgroup.com",
	"XOM":   "exxonmobil.com",
	"CVX":   "chevron.com",
	"BA":    "boeing.com",
	"BRK.B": "berkshirehathaway.com",
}
