package usecases

import "fmt"

// Per-variant bot copy. The turkish bot speaks Turkish, the korean bot
// speaks Korean; missing keys fall back to the turkish catalog.
var messages = map[string]map[string]string{
	"turkish": {
		"welcome":           "👋 Merhaba %s!\n\nBen Türkçe dil bilgisi asistanınızım. Bana metin, sesli mesaj veya fotoğraf gönderin, hatalarınızı düzelteyim.\n\n📝 Metin — dil bilgisi kontrolü\n🎤 Sesli mesaj — yazıya döker ve düzeltirim\n📷 Fotoğraf — metni okur ve düzeltirim",
		"help":              "📖 <b>Nasıl kullanılır?</b>\n\n• Metin gönderin: dil bilgisi ve yazım hatalarını düzeltirim\n• Sesli mesaj gönderin: önce yazıya döker, sonra düzeltirim\n• Fotoğraf gönderin: metni okur ve düzeltirim\n• /stats ile kullanım istatistiklerinizi görün",
		"processing":        "⏳ İşleniyor...",
		"processing_voice":  "🎤 Ses yazıya dökülüyor...",
		"processing_image":  "📷 Görseldeki metin okunuyor...",
		"no_errors":         "✅ Harika! Metninizde hata bulunamadı.",
		"corrected_header":  "📝 <b>Düzeltilmiş metin:</b>",
		"errors_header":     "🔍 <b>Bulunan hatalar (%d):</b>",
		"transcript_header": "🎤 <b>Yazıya dökülen metin:</b>",
		"extracted_header":  "📷 <b>Görseldeki metin:</b>",
		"no_text_found":     "⚠️ Görselde okunabilir metin bulunamadı.",
		"error_generic":     "❌ Bir şeyler ters gitti. Lütfen tekrar deneyin.",
		"error_transcribe":  "❌ Ses yazıya dökülemedi. Lütfen tekrar deneyin.",
		"rate_limited":      "⏳ Çok hızlı gidiyorsunuz! Lütfen biraz bekleyin.",
		"join_required":     "🔒 Botu kullanmak için önce kanallarımıza katılmalısınız:",
		"join_check":        "✅ Katıldım",
		"join_verified":     "✅ Teşekkürler! Artık botu kullanabilirsiniz.",
		"join_not_verified": "❌ Henüz tüm kanallara katılmamışsınız.",
		"stats":             "📊 <b>İstatistikleriniz</b>\n\nToplam istek: %d\n📝 Metin: %d\n🎤 Ses: %d\n📷 Görsel: %d",
		"not_admin":         "⛔ Bu komut yalnızca yöneticiler içindir.",
		"admin_panel":       "🔐 <b>Yönetim paneli</b>\n\nGiriş kodu: <code>%s</code>\n\nKod 5 dakika geçerlidir ve bir kez kullanılabilir.\n\n%s",
		"open_panel":        "🌐 Paneli aç",
		"show_stats":        "📊 İstatistikler",
		"channels_header":   "📋 <b>Kayıtlı kanallar:</b>",
		"channels_empty":    "📋 Kayıtlı kanal yok.",
		"broadcast_usage":   "Kullanım: /broadcast <mesaj>",
		"broadcast_done":    "📣 Duyuru tamamlandı: %d gönderildi, %d başarısız.",
	},
	"korean": {
		"welcome":           "👋 안녕하세요 %s님!\n\n저는 한국어 문법 도우미입니다. 텍스트, 음성 메시지, 사진을 보내 주시면 오류를 고쳐 드립니다.\n\n📝 텍스트 — 문법 검사\n🎤 음성 — 받아쓰기 후 교정\n📷 사진 — 텍스트 인식 후 교정",
		"help":              "📖 <b>사용 방법</b>\n\n• 텍스트를 보내면 문법과 맞춤법을 교정합니다\n• 음성 메시지를 보내면 먼저 받아쓰고 교정합니다\n• 사진을 보내면 텍스트를 읽고 교정합니다\n• /stats 로 사용 통계를 확인하세요",
		"processing":        "⏳ 처리 중...",
		"processing_voice":  "🎤 받아쓰는 중...",
		"processing_image":  "📷 이미지에서 텍스트를 읽는 중...",
		"no_errors":         "✅ 훌륭해요! 오류를 찾지 못했습니다.",
		"corrected_header":  "📝 <b>교정된 텍스트:</b>",
		"errors_header":     "🔍 <b>발견된 오류 (%d):</b>",
		"transcript_header": "🎤 <b>받아쓴 텍스트:</b>",
		"extracted_header":  "📷 <b>이미지의 텍스트:</b>",
		"no_text_found":     "⚠️ 이미지에서 읽을 수 있는 텍스트를 찾지 못했습니다.",
		"error_generic":     "❌ 문제가 발생했습니다. 다시 시도해 주세요.",
		"error_transcribe":  "❌ 받아쓰기에 실패했습니다. 다시 시도해 주세요.",
		"rate_limited":      "⏳ 너무 빠릅니다! 잠시 기다려 주세요.",
		"join_required":     "🔒 봇을 사용하려면 먼저 채널에 가입해야 합니다:",
		"join_check":        "✅ 가입했어요",
		"join_verified":     "✅ 감사합니다! 이제 봇을 사용할 수 있습니다.",
		"join_not_verified": "❌ 아직 모든 채널에 가입하지 않았습니다.",
		"stats":             "📊 <b>사용 통계</b>\n\n총 요청: %d\n📝 텍스트: %d\n🎤 음성: %d\n📷 이미지: %d",
		"not_admin":         "⛔ 관리자 전용 명령입니다.",
		"admin_panel":       "🔐 <b>관리자 패널</b>\n\n로그인 코드: <code>%s</code>\n\n코드는 5분간 유효하며 한 번만 사용할 수 있습니다.\n\n%s",
		"open_panel":        "🌐 패널 열기",
		"show_stats":        "📊 통계",
		"channels_header":   "📋 <b>등록된 채널:</b>",
		"channels_empty":    "📋 등록된 채널이 없습니다.",
		"broadcast_usage":   "사용법: /broadcast <메시지>",
		"broadcast_done":    "📣 방송 완료: %d건 전송, %d건 실패.",
	},
}

// t resolves a message key for a bot variant, formatting args in.
func t(variant, key string, args ...interface{}) string {
	catalog, ok := messages[variant]
	if !ok {
		catalog = messages["turkish"]
	}
	msg, ok := catalog[key]
	if !ok {
		msg = messages["turkish"][key]
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
