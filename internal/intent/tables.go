package intent

import "regexp"

// tagRule holds the detection table for one tag. Keywords are matched
// as case-insensitive substrings; patterns catch paraphrased intent the
// keyword list cannot. These tables are configuration, not logic.
type tagRule struct {
	tag      Tag
	keywords []string
	patterns []*regexp.Regexp
}

var defaultRules = []tagRule{
	{
		tag: TagBias,
		keywords: []string{
			"bias",
			"overthinking",
			"ragu-ragu",
			"galau",
			"takut salah",
			"fomo",
			"sunk cost",
			"overconfident",
			"anchoring",
			"second-guessing",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(tidak|gak|ga|nggak)\s+(bisa|mampu|sanggup)\s+(mikir|berpikir|fokus|tenang|memutuskan)`),
			regexp.MustCompile(`(?i)kenapa\s+(aku|saya|gue)\s+selalu`),
			regexp.MustCompile(`(?i)can'?t\s+stop\s+(thinking|worrying)`),
			regexp.MustCompile(`(?i)kepikiran\s+terus`),
		},
	},
	{
		tag: TagRiskGuard,
		keywords: []string{
			"risiko",
			"resiko",
			"risk",
			"kerugian",
			"worst case",
			"mitigasi",
			"exposure",
			"downside",
			"bahaya",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(kalau|jika|seandainya|gimana kalau)\s+\w*\s*(gagal|rugi|bangkrut|kolaps)`),
			regexp.MustCompile(`(?i)apa\s+(risiko|resiko|bahaya)nya`),
			regexp.MustCompile(`(?i)what\s+if\s+.*(fails?|goes wrong)`),
		},
	},
	{
		tag: TagMarketNews,
		keywords: []string{
			"pasar",
			"market",
			"berita",
			"tren",
			"kompetitor",
			"pesaing",
			"saham",
			"ekonomi",
			"inflasi",
			"suku bunga",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(kondisi|situasi|perkembangan)\s+(pasar|ekonomi|industri)`),
			regexp.MustCompile(`(?i)berita\s+(terbaru|terkini|hari ini)`),
			regexp.MustCompile(`(?i)lagi\s+(rame|ramai|viral)\s+apa`),
		},
	},
	{
		tag: TagPerformance,
		keywords: []string{
			"evaluasi kinerja",
			"penilaian kinerja",
			"kpi",
			"okr",
			"performance review",
			"appraisal",
			"produktivitas tim",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)evaluasi\s+(kinerja|performa|hasil kerja)`),
			regexp.MustCompile(`(?i)(nilai|menilai|mengukur|review)\s+(kinerja|performa|karyawan|tim)`),
			regexp.MustCompile(`(?i)target\s+(bulanan|kuartal|tahunan)\s+(tercapai|tidak tercapai|meleset)`),
		},
	},
	{
		tag: TagCompliance,
		keywords: []string{
			"compliance",
			"kepatuhan",
			"regulasi",
			"legalitas",
			"izin usaha",
			"ojk",
			"pajak",
			"audit",
			"kontrak",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(sesuai|melanggar|menyalahi)\s+(aturan|regulasi|hukum|ketentuan)`),
			regexp.MustCompile(`(?i)boleh\s+(secara hukum|menurut aturan|nggak sih secara legal)`),
			regexp.MustCompile(`(?i)(perlu|butuh)\s+izin`),
		},
	},
	{
		tag: TagSolidGroup,
		keywords: []string{
			"solid group",
			"internal perusahaan",
			"organisasi",
			"divisi",
			"karyawan",
			"struktur tim",
			"budaya kerja",
		},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)strategi\s+(tim|perusahaan|organisasi|internal)`),
			regexp.MustCompile(`(?i)(konflik|masalah)\s+(antar|di)\s*(tim|divisi|karyawan)`),
		},
	},
}

// Compound rule vocabulary: a decision word combined with an
// uncertainty word fires TagBias even when no direct bias keyword or
// pattern matched. This deliberately trades precision for recall on
// indirect expressions of decision anxiety.
var (
	decisionWords = []string{
		"putuskan",
		"keputusan",
		"memutuskan",
		"pilih",
		"memilih",
		"pilihan",
		"opsi",
		"decide",
		"decision",
	}
	uncertaintyWords = []string{
		"gimana ya",
		"bingung",
		"ragu",
		"tidak yakin",
		"gak yakin",
		"nggak yakin",
		"entahlah",
		"khawatir",
		"cemas",
		"takut",
		"not sure",
		"unsure",
	}
)
