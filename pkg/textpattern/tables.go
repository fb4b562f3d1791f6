package textpattern

// Built-in pattern tables for the five supported locales. Weights are
// hand-tuned severity priors: explicit frustration phrases score 0.6-0.95,
// implicit self-doubt 0.7-0.9, repeat and confusion cues 0.4-0.7.
//
// Adding a locale means adding one entry here; nothing else changes.
var builtinTables = map[Locale]Table{
	LocaleItalian: italianTable,
	LocaleEnglish: englishTable,
	LocaleSpanish: spanishTable,
	LocaleFrench:  frenchTable,
	LocaleGerman:  germanTable,
}

var italianTable = Table{
	Frustration: []Rule{
		{Expr: `non ce la faccio`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `mi arrendo`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `odio`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `che rabbia`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `non ci riesco`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `sono stuf[oa]`, Weight: 0.8, Category: CategoryExplicit},
		{Expr: `che palle`, Weight: 0.8, Category: CategoryExplicit},
		{Expr: `mi sono rott[oa]`, Weight: 0.8, Category: CategoryExplicit},
		{Expr: `è impossibile`, Weight: 0.75, Category: CategoryExplicit},
		{Expr: `non funziona mai`, Weight: 0.75, Category: CategoryExplicit},
		{Expr: `è inutile`, Weight: 0.75, Category: CategoryExplicit},
		{Expr: `non serve a niente`, Weight: 0.75, Category: CategoryExplicit},
		{Expr: `basta[!.]?`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `lascia perdere`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `uffa`, Weight: 0.6, Category: CategoryExplicit},
		{Expr: `sono stupid[oa]`, Weight: 0.9, Category: CategoryImplicit},
		{Expr: `non imparerò mai`, Weight: 0.85, Category: CategoryImplicit},
		{Expr: `sono negat[oa]`, Weight: 0.8, Category: CategoryImplicit},
		{Expr: `forse è meglio (che )?smett[a-z]*`, Weight: 0.8, Category: CategoryImplicit},
		{Expr: `non sono capace`, Weight: 0.75, Category: CategoryImplicit},
		{Expr: `è troppo difficile per me`, Weight: 0.75, Category: CategoryImplicit},
		{Expr: `non fa per me`, Weight: 0.7, Category: CategoryImplicit},
	},
	Repeat: []Rule{
		{Expr: `rispiega(melo|mi)?`, Weight: 0.6, Category: CategoryRepeat},
		{Expr: `puoi ripetere`, Weight: 0.55, Category: CategoryRepeat},
		{Expr: `ripeti(melo|mi|lo)?`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `come hai detto`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `un'altra volta`, Weight: 0.45, Category: CategoryRepeat},
		{Expr: `di nuovo`, Weight: 0.4, Category: CategoryRepeat},
	},
	Confusion: []Rule{
		{Expr: `sono confus[oa]`, Weight: 0.65, Category: CategoryQuestion},
		{Expr: `non capisco`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `non ho capito`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `mi sono pers[oa]`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `non mi è chiaro`, Weight: 0.55, Category: CategoryQuestion},
		{Expr: `cosa significa`, Weight: 0.5, Category: CategoryQuestion},
		{Expr: `che vuol dire`, Weight: 0.5, Category: CategoryQuestion},
		{Expr: `in che senso`, Weight: 0.5, Category: CategoryQuestion},
	},
	Fillers: []string{"ehm", "cioè", "allora", "insomma", "tipo", "boh", "mah", "diciamo"},
	Markers: []Marker{
		{Word: "non", Weight: 1},
		{Word: "che", Weight: 1},
		{Word: "sono", Weight: 1},
		{Word: "questo", Weight: 1},
		{Word: "anche", Weight: 1},
		{Word: "cosa", Weight: 1},
		{Word: "fare", Weight: 1},
		{Word: "più", Weight: 2},
		{Word: "perché", Weight: 2},
		{Word: "così", Weight: 2},
	},
}

var englishTable = Table{
	Frustration: []Rule{
		{Expr: `i give up`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `(this is )?so frustrating`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `i'?m so frustrated`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `i hate (this|it)`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `i can'?t do this`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `this is impossible`, Weight: 0.8, Category: CategoryExplicit},
		{Expr: `i'?m fed up`, Weight: 0.8, Category: CategoryExplicit},
		{Expr: `this sucks`, Weight: 0.75, Category: CategoryExplicit},
		{Expr: `nothing works`, Weight: 0.75, Category: CategoryExplicit},
		{Expr: `why won'?t (this|it) work`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `this makes no sense`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `i'?m done( with this)?`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `forget it`, Weight: 0.65, Category: CategoryExplicit},
		{Expr: `i'?m too stupid`, Weight: 0.9, Category: CategoryImplicit},
		{Expr: `i'?m not smart enough`, Weight: 0.85, Category: CategoryImplicit},
		{Expr: `i('?ll| will) never (get|understand) (this|it)`, Weight: 0.85, Category: CategoryImplicit},
		{Expr: `i'?m (terrible|awful|hopeless) at this`, Weight: 0.8, Category: CategoryImplicit},
		{Expr: `maybe i should (just )?(quit|stop|give up)`, Weight: 0.8, Category: CategoryImplicit},
		{Expr: `i always mess (it |this |things )?up`, Weight: 0.75, Category: CategoryImplicit},
		{Expr: `it'?s too hard for me`, Weight: 0.75, Category: CategoryImplicit},
	},
	Repeat: []Rule{
		{Expr: `go over that again`, Weight: 0.55, Category: CategoryRepeat},
		{Expr: `can you repeat`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `say (that|it) again`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `repeat that`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `what did you (just )?say`, Weight: 0.45, Category: CategoryRepeat},
		{Expr: `one more time`, Weight: 0.45, Category: CategoryRepeat},
		{Expr: `again,? please`, Weight: 0.4, Category: CategoryRepeat},
	},
	Confusion: []Rule{
		{Expr: `i'?m (so )?confused`, Weight: 0.65, Category: CategoryQuestion},
		{Expr: `i don'?t understand`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `i don'?t get it`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `i'?m (completely )?lost`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `makes no sense to me`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `what does that mean`, Weight: 0.5, Category: CategoryQuestion},
		{Expr: `wait,? what`, Weight: 0.5, Category: CategoryQuestion},
		{Expr: `\bhuh\b`, Weight: 0.4, Category: CategoryQuestion},
	},
	Fillers: []string{"um", "uh", "hmm", "like", "well", "basically", "actually", "literally", "you know"},
	Markers: []Marker{
		{Word: "and", Weight: 1},
		{Word: "this", Weight: 1},
		{Word: "that", Weight: 1},
		{Word: "have", Weight: 1},
		{Word: "with", Weight: 1},
		{Word: "you", Weight: 1},
		{Word: "not", Weight: 1},
		{Word: "the", Weight: 2},
		{Word: "what", Weight: 2},
		{Word: "why", Weight: 2},
	},
}

var spanishTable = Table{
	Frustration: []Rule{
		{Expr: `no puedo más`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `me rindo`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `odio (esto|est[ao])`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `qué rabia`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `estoy hart[oa]`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `no lo consigo`, Weight: 0.8, Category: CategoryExplicit},
		{Expr: `es imposible`, Weight: 0.8, Category: CategoryExplicit},
		{Expr: `es inútil`, Weight: 0.75, Category: CategoryExplicit},
		{Expr: `no me sale`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `esto no funciona`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `basta ya`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `qué fastidio`, Weight: 0.65, Category: CategoryExplicit},
		{Expr: `soy tont[oa]`, Weight: 0.9, Category: CategoryImplicit},
		{Expr: `nunca lo aprenderé`, Weight: 0.85, Category: CategoryImplicit},
		{Expr: `soy malísim[oa]`, Weight: 0.8, Category: CategoryImplicit},
		{Expr: `quizás debería dejarlo`, Weight: 0.8, Category: CategoryImplicit},
		{Expr: `no soy capaz`, Weight: 0.75, Category: CategoryImplicit},
		{Expr: `es demasiado difícil para mí`, Weight: 0.75, Category: CategoryImplicit},
		{Expr: `no sirvo para esto`, Weight: 0.75, Category: CategoryImplicit},
	},
	Repeat: []Rule{
		{Expr: `explíca(me)?lo otra vez`, Weight: 0.6, Category: CategoryRepeat},
		{Expr: `puedes repetir`, Weight: 0.55, Category: CategoryRepeat},
		{Expr: `repite`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `cómo has dicho`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `otra vez`, Weight: 0.45, Category: CategoryRepeat},
		{Expr: `de nuevo`, Weight: 0.4, Category: CategoryRepeat},
	},
	Confusion: []Rule{
		{Expr: `estoy confundid[oa]`, Weight: 0.65, Category: CategoryQuestion},
		{Expr: `no (lo )?entiendo`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `estoy perdid[oa]`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `no me queda claro`, Weight: 0.55, Category: CategoryQuestion},
		{Expr: `qué significa`, Weight: 0.5, Category: CategoryQuestion},
		{Expr: `qué quiere decir`, Weight: 0.5, Category: CategoryQuestion},
		{Expr: `no tiene sentido`, Weight: 0.5, Category: CategoryQuestion},
	},
	Fillers: []string{"este", "pues", "bueno", "o sea", "eh", "vale", "en plan", "a ver"},
	Markers: []Marker{
		{Word: "que", Weight: 1},
		{Word: "pero", Weight: 1},
		{Word: "como", Weight: 1},
		{Word: "para", Weight: 1},
		{Word: "muy", Weight: 1},
		{Word: "nada", Weight: 1},
		{Word: "esto", Weight: 1},
		// Distinctive first-person forms break ties against Italian
		{Word: "estoy", Weight: 2},
		{Word: "tengo", Weight: 2},
		{Word: "puedo", Weight: 2},
	},
}

var frenchTable = Table{
	Frustration: []Rule{
		{Expr: `je n'?y arrive pas`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `j'?en ai marre`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `j'?abandonne`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `je déteste`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `ça m'?énerve`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `je craque`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `c'?est impossible`, Weight: 0.8, Category: CategoryExplicit},
		{Expr: `rien ne marche`, Weight: 0.75, Category: CategoryExplicit},
		{Expr: `c'?est nul`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `laisse tomber`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `ça ne sert à rien`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `je suis null?e?\b`, Weight: 0.85, Category: CategoryImplicit},
		{Expr: `je n'?y arriverai jamais`, Weight: 0.85, Category: CategoryImplicit},
		{Expr: `je ne suis pas capable`, Weight: 0.75, Category: CategoryImplicit},
		{Expr: `c'?est trop dur pour moi`, Weight: 0.75, Category: CategoryImplicit},
		{Expr: `je devrais peut-être arrêter`, Weight: 0.8, Category: CategoryImplicit},
	},
	Repeat: []Rule{
		{Expr: `réexplique`, Weight: 0.6, Category: CategoryRepeat},
		{Expr: `tu peux répéter`, Weight: 0.55, Category: CategoryRepeat},
		{Expr: `répète`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `qu'?est-ce que tu as dit`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `redis-le`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `encore une fois`, Weight: 0.45, Category: CategoryRepeat},
	},
	Confusion: []Rule{
		{Expr: `je suis confuse?\b`, Weight: 0.65, Category: CategoryQuestion},
		{Expr: `je ne comprends pas`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `je n'?ai pas compris`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `je suis perdue?\b`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `ce n'?est pas clair`, Weight: 0.55, Category: CategoryQuestion},
		{Expr: `qu'?est-ce que ça veut dire`, Weight: 0.5, Category: CategoryQuestion},
		{Expr: `comment ça`, Weight: 0.45, Category: CategoryQuestion},
	},
	Fillers: []string{"euh", "bah", "ben", "genre", "alors", "bref", "enfin", "quoi"},
	Markers: []Marker{
		{Word: "pas", Weight: 1},
		{Word: "est", Weight: 1},
		{Word: "les", Weight: 1},
		{Word: "des", Weight: 1},
		{Word: "une", Weight: 1},
		{Word: "mais", Weight: 1},
		{Word: "avec", Weight: 1},
		{Word: "je", Weight: 2},
		{Word: "c'est", Weight: 2},
		{Word: "j'ai", Weight: 2},
	},
}

var germanTable = Table{
	Frustration: []Rule{
		{Expr: `ich schaffe (das|es) nicht`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `ich gebe auf`, Weight: 0.9, Category: CategoryExplicit},
		{Expr: `ich hasse (das|es)`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `ich habe die nase voll`, Weight: 0.85, Category: CategoryExplicit},
		{Expr: `das ist unmöglich`, Weight: 0.8, Category: CategoryExplicit},
		{Expr: `das nervt`, Weight: 0.8, Category: CategoryExplicit},
		{Expr: `das funktioniert nie`, Weight: 0.75, Category: CategoryExplicit},
		{Expr: `es reicht`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `das bringt (doch )?nichts`, Weight: 0.7, Category: CategoryExplicit},
		{Expr: `vergiss es`, Weight: 0.65, Category: CategoryExplicit},
		{Expr: `ich bin zu dumm`, Weight: 0.9, Category: CategoryImplicit},
		{Expr: `ich werde das nie lernen`, Weight: 0.85, Category: CategoryImplicit},
		{Expr: `ich kann das (einfach )?nicht`, Weight: 0.8, Category: CategoryImplicit},
		{Expr: `vielleicht sollte ich aufhören`, Weight: 0.8, Category: CategoryImplicit},
		{Expr: `ich bin schlecht darin`, Weight: 0.75, Category: CategoryImplicit},
		{Expr: `das ist zu schwer für mich`, Weight: 0.75, Category: CategoryImplicit},
	},
	Repeat: []Rule{
		{Expr: `erklär(e)? es nochmal`, Weight: 0.6, Category: CategoryRepeat},
		{Expr: `kannst du das wiederholen`, Weight: 0.55, Category: CategoryRepeat},
		{Expr: `wiederhol(e)?\b`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `was hast du gesagt`, Weight: 0.5, Category: CategoryRepeat},
		{Expr: `noch ?(ein)?mal`, Weight: 0.45, Category: CategoryRepeat},
	},
	Confusion: []Rule{
		{Expr: `ich bin verwirrt`, Weight: 0.65, Category: CategoryQuestion},
		{Expr: `ich verstehe (das |es )?nicht`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `ich komme nicht mit`, Weight: 0.6, Category: CategoryQuestion},
		{Expr: `das ist mir nicht klar`, Weight: 0.55, Category: CategoryQuestion},
		{Expr: `was bedeutet das`, Weight: 0.5, Category: CategoryQuestion},
		{Expr: `was heißt das`, Weight: 0.5, Category: CategoryQuestion},
		{Expr: `wie meinst du das`, Weight: 0.45, Category: CategoryQuestion},
	},
	Fillers: []string{"äh", "ähm", "halt", "quasi", "also", "naja", "sozusagen", "tja"},
	Markers: []Marker{
		{Word: "das", Weight: 1},
		{Word: "ist", Weight: 1},
		{Word: "ein", Weight: 1},
		{Word: "wie", Weight: 1},
		{Word: "aber", Weight: 1},
		{Word: "mit", Weight: 1},
		{Word: "was", Weight: 1},
		{Word: "ich", Weight: 2},
		{Word: "nicht", Weight: 2},
		{Word: "und", Weight: 2},
	},
}
