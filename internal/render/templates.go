package render

const templates = `
{{define "home_cards"}}{{range .}}
<a href="{{.WatchURL}}" target="_blank" class="block group">
    <div class="relative rounded-[2rem] overflow-hidden mb-8 shadow-xl bg-zinc-200 aspect-video">
        <img src="{{placeholder .Thumbnail}}" class="w-full h-full object-cover transition-transform duration-700 group-hover:scale-105" alt="{{.Title}}">
    </div>
    <div class="space-y-3">
        <span class="text-gold text-[0.65rem] font-bold tracking-[0.2em] uppercase">{{.Date}}</span>
        <h3 class="text-xl font-bold tracking-tight text-charcoal group-hover:text-teal transition-colors leading-tight">{{.Title}}</h3>
    </div>
</a>{{end}}{{end}}

{{define "feature_card"}}
<a href="{{.WatchURL}}" target="_blank" class="group relative block overflow-hidden rounded-[3rem] shadow-2xl bg-charcoal h-[50vh]">
    <img src="{{placeholder .Thumbnail}}" class="w-full h-full object-cover opacity-50 transition-transform duration-1000 group-hover:scale-105" alt="{{.Title}}">
    <div class="absolute inset-0 bg-gradient-to-t from-charcoal via-transparent to-transparent"></div>
    <div class="absolute bottom-12 left-10 right-10">
        <span class="text-gold text-[0.65rem] font-bold tracking-[0.3em] uppercase mb-4 block">{{.Date}}</span>
        <h2 class="text-white text-3xl md:text-5xl font-bold mb-6 leading-tight">{{.Title}}</h2>
        <span class="text-gold font-bold uppercase tracking-[0.3em] text-[0.65rem] border-b border-gold pb-1">Watch Now &rarr;</span>
    </div>
</a>{{end}}

{{define "hybrid_cards"}}{{$size := .Size}}{{range .Items}}
<a href="{{.WatchURL}}" target="_blank" class="block group">
    <div class="relative rounded-[2rem] overflow-hidden mb-6 shadow-lg bg-zinc-200 aspect-video">
        <img src="{{placeholder .Thumbnail}}" class="w-full h-full object-cover transition-transform duration-700 group-hover:scale-110" alt="{{.Title}}">
    </div>
    <div class="space-y-3">
        <span class="text-gold text-[0.65rem] font-bold tracking-[0.2em] uppercase">{{.Date}}</span>
        <h3 class="{{$size}} font-semibold tracking-tight group-hover:text-teal transition-colors leading-tight">{{.Title}}</h3>
    </div>
</a>{{end}}{{end}}

{{define "deepdive_cards"}}{{range .}}
<a href="{{safeURL .URL}}" class="block group">
    <div class="relative rounded-[2rem] overflow-hidden mb-8 shadow-lg bg-zinc-100 aspect-video">
        <img src="{{placeholder .Image}}" class="w-full h-full object-cover grayscale-[30%] group-hover:grayscale-0 transition-all duration-700" alt="{{.Title}}">
    </div>
    <h3 class="text-xl font-bold group-hover:text-teal transition-colors">{{orFallback .Title "Untitled Study"}}</h3>
    <p class="text-zinc-500 text-sm mt-3 line-clamp-2">{{.Excerpt}}</p>
</a>{{end}}{{end}}

{{define "library_grid"}}{{range $i, $e := .}}{{$f := featured $i}}
<article class="{{if $f}}md:col-span-12 mb-16{{else}}md:col-span-6{{end}}">
    <a href="{{safeURL $e.URL}}" class="group block">
        <div class="relative {{if $f}}h-[60vh]{{else}}h-[40vh]{{end}} rounded-[3rem] overflow-hidden mb-10 shadow-2xl bg-zinc-100">
            <img src="{{placeholder $e.Image}}" class="img-reveal w-full h-full object-cover" alt="{{$e.Title}}">
        </div>
        <div class="max-w-3xl">
            <h2 class="{{if $f}}text-4xl md:text-5xl{{else}}text-3xl{{end}} font-bold mb-6 group-hover:text-teal transition-colors duration-300">{{orFallback $e.Title "Untitled Study"}}</h2>
            <p class="text-zinc-500 text-lg line-clamp-3 font-light leading-relaxed mb-8">{{$e.Excerpt}}</p>
            <span class="text-gold font-bold uppercase tracking-[0.3em] text-[0.7rem] border-b border-gold pb-1 group-hover:text-teal group-hover:border-teal transition-all">Explore Study &rarr;</span>
        </div>
    </a>
</article>{{end}}{{end}}

{{define "devotional_grid"}}{{range $i, $e := .}}{{$f := featured $i}}
<article class="{{if $f}}md:col-span-8{{else}}md:col-span-4{{end}} group">
    <a href="{{safeURL $e.URL}}" class="block no-underline">
        <div class="relative overflow-hidden mb-10 rounded-sm bg-zinc-100">
            <img src="{{placeholder $e.Image}}" class="w-full {{if $f}}aspect-[16/8]{{else}}aspect-[4/5]{{end}} object-cover img-reveal" alt="{{$e.Title}}">
        </div>
        <div class="{{if $f}}max-w-3xl{{end}}">
            <h2 class="{{if $f}}text-4xl md:text-6xl{{else}}text-3xl{{end}} font-bold mb-6 leading-[1.2] text-charcoal group-hover:text-teal transition-colors duration-500 underline-offset-[12px]">{{$e.Title}}</h2>
            <p class="text-zinc-500 {{if $f}}text-xl{{else}}text-lg{{end}} leading-relaxed line-clamp-3 font-light mb-8">{{$e.Excerpt}}</p>
        </div>
    </a>
</article>{{end}}{{end}}

{{define "flex_grid"}}{{range .}}<a href="res/dev/forty-flex/day-{{.Slug}}.html" class="day-grid-item py-4 text-center rounded-xl font-bold text-zinc-400 hover:text-gold transition-colors">{{.Num}}</a>{{end}}{{end}}

{{define "live_player"}}<iframe src="https://www.youtube.com/embed/{{.}}?autoplay=1" frameborder="0" allowfullscreen></iframe>{{end}}

{{define "banner_image"}}<img src="{{placeholder .}}" class="opacity-80" alt="">{{end}}
`
