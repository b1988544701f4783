package faker

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used when no locale is requested.
const DefaultLocale = "en_US"

// locale holds the value pools for one locale.
type locale struct {
	code        string
	tag         language.Tag
	firstNames  []string
	lastNames   []string
	streets     []string
	cities      []string
	states      []string
	country     string
	companies   []string
	companySfx  []string
	jobs        []string
	domains     []string
	words       []string
	colors      []string
	phone       string // # = digit
	postcode    string // # = digit, ? = uppercase letter
	addressFmt  string // {n} number, {street}, {city}, {state}, {zip}
	familyFirst bool
}

var loremWords = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing",
	"elit", "sed", "do", "eiusmod", "tempor", "incididunt", "ut", "labore",
	"et", "dolore", "magna", "aliqua", "enim", "ad", "minim", "veniam",
	"quis", "nostrud", "exercitation", "ullamco", "laboris", "nisi",
	"aliquip", "ex", "ea", "commodo", "consequat", "duis", "aute", "irure",
	"in", "reprehenderit", "voluptate", "velit", "esse", "cillum", "fugiat",
	"nulla", "pariatur", "excepteur", "sint", "occaecat", "cupidatat",
}

var locales = []*locale{
	{
		code:       "en_US",
		tag:        language.AmericanEnglish,
		firstNames: []string{"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda", "David", "Elizabeth", "William", "Barbara"},
		lastNames:  []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez", "Wilson", "Anderson"},
		streets:    []string{"Main St", "Oak Ave", "Elm St", "Park Blvd", "Cedar Ln", "Maple Dr", "Pine Rd", "Lake Way", "Washington Ave", "Sunset Blvd"},
		cities:     []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Seattle", "Denver", "Boston", "Austin", "Portland"},
		states:     []string{"NY", "CA", "IL", "TX", "AZ", "WA", "CO", "MA", "TX", "OR"},
		country:    "United States",
		companies:  []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Vandelay", "Stark", "Wayne", "Cyberdyne", "Tyrell"},
		companySfx: []string{"Inc", "LLC", "Corp", "Group", "and Sons"},
		jobs:       []string{"Software Engineer", "Accountant", "Nurse", "Teacher", "Product Manager", "Electrician", "Data Analyst", "Architect", "Pharmacist", "Sales Associate"},
		domains:    []string{"example.com", "example.org", "example.net", "mail.test", "demo.io"},
		words:      loremWords,
		colors:     []string{"red", "blue", "green", "yellow", "purple", "orange", "teal", "navy", "maroon", "silver"},
		phone:      "+1-###-###-####",
		postcode:   "#####",
		addressFmt: "{n} {street}, {city}, {state} {zip}",
	},
	{
		code:       "en_GB",
		tag:        language.BritishEnglish,
		firstNames: []string{"Oliver", "Amelia", "George", "Isla", "Harry", "Ava", "Jack", "Emily", "Charlie", "Sophie", "Thomas", "Grace"},
		lastNames:  []string{"Smith", "Jones", "Taylor", "Brown", "Williams", "Wilson", "Evans", "Thomas", "Roberts", "Walker", "Wright", "Hughes"},
		streets:    []string{"High Street", "Station Road", "Church Lane", "Victoria Road", "Green Lane", "Mill Lane", "Manor Road", "Kings Road"},
		cities:     []string{"London", "Manchester", "Birmingham", "Leeds", "Bristol", "Edinburgh", "Cardiff", "Glasgow", "Oxford", "York"},
		states:     []string{"Greater London", "Greater Manchester", "West Midlands", "West Yorkshire", "Bristol", "Lothian", "Glamorgan", "Lanarkshire", "Oxfordshire", "North Yorkshire"},
		country:    "United Kingdom",
		companies:  []string{"Albion", "Thames", "Pennine", "Cotswold", "Hadrian", "Windsor", "Brunel", "Severn"},
		companySfx: []string{"Ltd", "PLC", "and Partners", "Holdings"},
		jobs:       []string{"Solicitor", "Civil Engineer", "Chartered Accountant", "Nurse", "Teacher", "Plumber", "Barista", "Pharmacist"},
		domains:    []string{"example.co.uk", "example.org.uk", "mail.test"},
		words:      loremWords,
		colors:     []string{"red", "blue", "green", "grey", "purple", "orange", "teal", "navy", "burgundy", "silver"},
		phone:      "+44 7### ######",
		postcode:   "??# #??",
		addressFmt: "{n} {street}, {city} {zip}",
	},
	{
		code:       "de_DE",
		tag:        language.German,
		firstNames: []string{"Lukas", "Anna", "Leon", "Lea", "Finn", "Hannah", "Jonas", "Mia", "Paul", "Lena", "Felix", "Laura"},
		lastNames:  []string{"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker", "Schulz", "Hoffmann", "Koch", "Richter"},
		streets:    []string{"Hauptstraße", "Schulstraße", "Gartenstraße", "Bahnhofstraße", "Dorfstraße", "Bergstraße", "Lindenstraße", "Kirchweg"},
		cities:     []string{"Berlin", "Hamburg", "München", "Köln", "Frankfurt am Main", "Stuttgart", "Düsseldorf", "Leipzig", "Dresden", "Bremen"},
		states:     []string{"Berlin", "Hamburg", "Bayern", "Nordrhein-Westfalen", "Hessen", "Baden-Württemberg", "Nordrhein-Westfalen", "Sachsen", "Sachsen", "Bremen"},
		country:    "Deutschland",
		companies:  []string{"Nordwerk", "Rheintal", "Alpentech", "Elbhaus", "Bergmann", "Sonnenfeld", "Ostwind"},
		companySfx: []string{"GmbH", "AG", "KG", "GmbH & Co. KG"},
		jobs:       []string{"Ingenieur", "Lehrerin", "Krankenpfleger", "Elektriker", "Bäcker", "Informatikerin", "Steuerberater", "Architektin"},
		domains:    []string{"beispiel.de", "example.de", "mail.test"},
		words:      []string{"der", "und", "sein", "haben", "werden", "können", "Zeit", "Jahr", "Tag", "Weg", "Haus", "Stadt", "Arbeit", "Frage", "Leben", "Welt", "Kind", "groß", "neu", "gut", "klein", "lang", "schnell", "heute", "immer", "wieder", "Wasser", "Licht", "Garten", "Zug"},
		colors:     []string{"rot", "blau", "grün", "gelb", "lila", "orange", "grau", "schwarz", "weiß", "braun"},
		phone:      "+49 ### #######",
		postcode:   "#####",
		addressFmt: "{street} {n}, {zip} {city}",
	},
	{
		code:       "fr_FR",
		tag:        language.French,
		firstNames: []string{"Gabriel", "Jade", "Louis", "Louise", "Raphaël", "Emma", "Jules", "Alice", "Adam", "Chloé", "Hugo", "Léa"},
		lastNames:  []string{"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit", "Durand", "Leroy", "Moreau", "Simon", "Laurent"},
		streets:    []string{"rue de la Paix", "avenue Victor Hugo", "rue du Moulin", "boulevard Voltaire", "rue de l'Église", "place de la République", "rue Pasteur"},
		cities:     []string{"Paris", "Marseille", "Lyon", "Toulouse", "Nice", "Nantes", "Strasbourg", "Montpellier", "Bordeaux", "Lille"},
		states:     []string{"Île-de-France", "Provence-Alpes-Côte d'Azur", "Auvergne-Rhône-Alpes", "Occitanie", "Provence-Alpes-Côte d'Azur", "Pays de la Loire", "Grand Est", "Occitanie", "Nouvelle-Aquitaine", "Hauts-de-France"},
		country:    "France",
		companies:  []string{"Lumière", "Rivage", "Solstice", "Azur", "Montclair", "Belleville", "Vauban"},
		companySfx: []string{"SA", "SARL", "SAS", "et Fils"},
		jobs:       []string{"Ingénieur", "Infirmière", "Professeur", "Boulanger", "Avocate", "Comptable", "Architecte", "Pharmacien"},
		domains:    []string{"exemple.fr", "example.fr", "mail.test"},
		words:      []string{"le", "et", "être", "avoir", "faire", "temps", "année", "jour", "chemin", "maison", "ville", "travail", "question", "vie", "monde", "enfant", "grand", "nouveau", "bon", "petit", "long", "rapide", "toujours", "encore", "eau", "lumière", "jardin", "train", "mer", "ciel"},
		colors:     []string{"rouge", "bleu", "vert", "jaune", "violet", "orange", "gris", "noir", "blanc", "marron"},
		phone:      "+33 # ## ## ## ##",
		postcode:   "#####",
		addressFmt: "{n} {street}, {zip} {city}",
	},
	{
		code:       "es_ES",
		tag:        language.EuropeanSpanish,
		firstNames: []string{"Hugo", "Lucía", "Martín", "Sofía", "Pablo", "María", "Daniel", "Paula", "Alejandro", "Valeria", "Lucas", "Carmen"},
		lastNames:  []string{"García", "Rodríguez", "González", "Fernández", "López", "Martínez", "Sánchez", "Pérez", "Gómez", "Martín", "Jiménez", "Ruiz"},
		streets:    []string{"Calle Mayor", "Avenida de la Constitución", "Calle Real", "Paseo del Prado", "Calle del Sol", "Plaza de España", "Calle Nueva"},
		cities:     []string{"Madrid", "Barcelona", "Valencia", "Sevilla", "Zaragoza", "Málaga", "Murcia", "Palma", "Bilbao", "Alicante"},
		states:     []string{"Madrid", "Cataluña", "Comunidad Valenciana", "Andalucía", "Aragón", "Andalucía", "Región de Murcia", "Islas Baleares", "País Vasco", "Comunidad Valenciana"},
		country:    "España",
		companies:  []string{"Iberia", "Solana", "Meridiano", "Alhambra", "Costa", "Pirineo", "Tajo"},
		companySfx: []string{"S.A.", "S.L.", "y Asociados"},
		jobs:       []string{"Ingeniera", "Enfermero", "Profesora", "Panadero", "Abogada", "Contable", "Arquitecto", "Farmacéutica"},
		domains:    []string{"ejemplo.es", "example.es", "mail.test"},
		words:      []string{"el", "y", "ser", "tener", "hacer", "tiempo", "año", "día", "camino", "casa", "ciudad", "trabajo", "pregunta", "vida", "mundo", "niño", "grande", "nuevo", "bueno", "pequeño", "largo", "rápido", "siempre", "otra", "agua", "luz", "jardín", "tren", "mar", "cielo"},
		colors:     []string{"rojo", "azul", "verde", "amarillo", "morado", "naranja", "gris", "negro", "blanco", "marrón"},
		phone:      "+34 6## ### ###",
		postcode:   "#####",
		addressFmt: "{street} {n}, {zip} {city}",
	},
	{
		code:       "ru_RU",
		tag:        language.Russian,
		firstNames: []string{"Александр", "Анна", "Дмитрий", "Мария", "Максим", "Елена", "Иван", "Ольга", "Сергей", "Наталья", "Михаил", "Татьяна"},
		lastNames:  []string{"Иванов", "Смирнов", "Кузнецов", "Попов", "Васильев", "Петров", "Соколов", "Михайлов", "Новиков", "Фёдоров", "Морозов", "Волков"},
		streets:    []string{"ул. Ленина", "ул. Мира", "ул. Садовая", "пр. Победы", "ул. Лесная", "ул. Школьная", "ул. Гагарина"},
		cities:     []string{"Москва", "Санкт-Петербург", "Новосибирск", "Екатеринбург", "Казань", "Нижний Новгород", "Самара", "Омск"},
		states:     []string{"Москва", "Санкт-Петербург", "Новосибирская обл.", "Свердловская обл.", "Татарстан", "Нижегородская обл.", "Самарская обл.", "Омская обл."},
		country:    "Россия",
		companies:  []string{"Север", "Восток", "Волга", "Урал", "Сибирь", "Байкал", "Алмаз"},
		companySfx: []string{"ООО", "АО", "ПАО"},
		jobs:       []string{"Инженер", "Врач", "Учитель", "Бухгалтер", "Программист", "Электрик", "Повар", "Архитектор"},
		domains:    []string{"example.ru", "mail.test"},
		words:      []string{"время", "год", "день", "дорога", "дом", "город", "работа", "вопрос", "жизнь", "мир", "ребёнок", "большой", "новый", "хороший", "маленький", "долгий", "быстрый", "всегда", "снова", "вода", "свет", "сад", "поезд", "море", "небо"},
		colors:     []string{"красный", "синий", "зелёный", "жёлтый", "фиолетовый", "оранжевый", "серый", "чёрный", "белый", "коричневый"},
		phone:      "+7 9## ###-##-##",
		postcode:   "######",
		addressFmt: "{zip}, {city}, {street}, д. {n}",
	},
	{
		code:        "ja_JP",
		tag:         language.Japanese,
		firstNames:  []string{"翔", "陽菜", "蓮", "結衣", "大翔", "葵", "悠真", "さくら", "湊", "美咲", "樹", "凛"},
		lastNames:   []string{"佐藤", "鈴木", "高橋", "田中", "伊藤", "渡辺", "山本", "中村", "小林", "加藤", "吉田", "山田"},
		streets:     []string{"中央", "本町", "栄町", "緑町", "旭町", "新町", "桜木町"},
		cities:      []string{"東京", "横浜", "大阪", "名古屋", "札幌", "福岡", "神戸", "京都", "川崎", "仙台"},
		states:      []string{"東京都", "神奈川県", "大阪府", "愛知県", "北海道", "福岡県", "兵庫県", "京都府", "神奈川県", "宮城県"},
		country:     "日本",
		companies:   []string{"山田", "日の出", "富士", "さくら", "青空", "大和", "東洋"},
		companySfx:  []string{"株式会社", "有限会社"},
		jobs:        []string{"エンジニア", "看護師", "教師", "会計士", "デザイナー", "薬剤師", "建築家", "料理人"},
		domains:     []string{"example.jp", "mail.test"},
		words:       []string{"時間", "年", "日", "道", "家", "町", "仕事", "質問", "生活", "世界", "子供", "大きい", "新しい", "良い", "小さい", "長い", "速い", "いつも", "また", "水", "光", "庭", "電車", "海", "空"},
		colors:      []string{"赤", "青", "緑", "黄色", "紫", "橙", "灰色", "黒", "白", "茶色"},
		phone:       "090-####-####",
		postcode:    "###-####",
		addressFmt:  "〒{zip} {state}{city}{street}{n}",
		familyFirst: true,
	},
}

var (
	localeByCode = func() map[string]*locale {
		m := make(map[string]*locale, len(locales))
		for _, l := range locales {
			m[l.code] = l
		}
		return m
	}()
	localeMatcher = func() language.Matcher {
		tags := make([]language.Tag, len(locales))
		for i, l := range locales {
			tags[i] = l.tag
		}
		return language.NewMatcher(tags)
	}()
)

// Locales returns the supported locale codes.
func Locales() []string {
	out := make([]string, len(locales))
	for i, l := range locales {
		out[i] = l.code
	}
	return out
}

// ResolveLocale maps a requested locale ("de_DE", "en-GB", "fr") to the
// closest supported one. Empty or unparseable requests get DefaultLocale.
func ResolveLocale(requested string) string {
	return lookupLocale(requested).code
}

func lookupLocale(requested string) *locale {
	if requested == "" {
		return localeByCode[DefaultLocale]
	}
	if l, ok := localeByCode[requested]; ok {
		return l
	}
	tag, err := language.Parse(strings.ReplaceAll(requested, "_", "-"))
	if err != nil {
		return localeByCode[DefaultLocale]
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return localeByCode[DefaultLocale]
	}
	return locales[idx]
}
